package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

type Migration struct {
	Name     string
	UpFile   string
	DownFile string
}

// MigrationScan is the result of walking a migration directory.
type MigrationScan struct {
	Migrations []Migration
	// OrphanDownFiles lists .down.sql files without a matching .up.sql.
	OrphanDownFiles []string
}

func ParseMigrations(migrationDir string) ([]Migration, error) {
	scan, err := ScanMigrations(migrationDir)
	if err != nil {
		return nil, err
	}
	return scan.Migrations, nil
}

// ScanMigrations pairs up and down files by base name, ordered by name.
func ScanMigrations(migrationDir string) (*MigrationScan, error) {
	slog.Debug("scanning migration directory", "directory", migrationDir)
	upFiles := make(map[string]string)
	downFiles := make(map[string]string)

	err := filepath.WalkDir(migrationDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		fileName := d.Name()
		switch {
		case strings.HasSuffix(fileName, upSuffix):
			baseName := strings.TrimSuffix(fileName, upSuffix)
			upFiles[baseName] = path
			slog.Debug("found up migration", "name", baseName, "file", path)
		case strings.HasSuffix(fileName, downSuffix):
			baseName := strings.TrimSuffix(fileName, downSuffix)
			downFiles[baseName] = path
			slog.Debug("found down migration", "name", baseName, "file", path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk migration directory: %w", err)
	}

	scan := &MigrationScan{}
	for baseName, upFile := range upFiles {
		migration := Migration{
			Name:   baseName,
			UpFile: upFile,
		}
		if downFile, exists := downFiles[baseName]; exists {
			migration.DownFile = downFile
		}
		scan.Migrations = append(scan.Migrations, migration)
	}

	for baseName, downFile := range downFiles {
		if _, exists := upFiles[baseName]; !exists {
			slog.Warn("down migration has no up migration", "name", baseName, "file", downFile)
			scan.OrphanDownFiles = append(scan.OrphanDownFiles, downFile)
		}
	}

	slices.SortFunc(scan.Migrations, func(a, b Migration) int {
		return strings.Compare(a.Name, b.Name)
	})
	slices.Sort(scan.OrphanDownFiles)

	slog.Info("parsed migrations", "count", len(scan.Migrations), "upFiles", len(upFiles), "downFiles", len(downFiles))
	return scan, nil
}
