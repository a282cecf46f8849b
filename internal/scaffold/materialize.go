// SPDX-License-Identifier: MPL-2.0

package scaffold

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookwright-cli/internal/catalog"
)

const (
	// SystemDirName is the template-system directory inside a project. It
	// doubles as the marker that identifies a project during the sibling
	// scan, and it is the only directory a template refresh replaces.
	SystemDirName = ".bookwright"

	// ProjectConfigName is the rendered project configuration file inside
	// the system directory.
	ProjectConfigName = "config.yaml"

	// inboxFolderName is the content folder that receives the inbox
	// readme when the descriptor declares one.
	inboxFolderName = "inbox"

	// inboxReadmeName is the filename the inbox readme is written to.
	inboxReadmeName = "README.md"

	// dateLayout is the substitution format for the {{DATE}} placeholder.
	dateLayout = "2006-01-02"
)

// languageDir is the language bundle's path inside a catalog checkout.
func languageDir(root, moduleID, languageID string) string {
	return filepath.Join(root, moduleID, languageID)
}

// substitute renders the literal placeholders of a template block. This is
// plain string replacement, not a templating engine: unknown placeholders
// pass through untouched.
func substitute(tmpl, author, project string, now time.Time) string {
	return strings.NewReplacer(
		"{{AUTHOR_NAME}}", author,
		"{{PROJECT_NAME}}", project,
		"{{DATE}}", now.Format(dateLayout),
	).Replace(tmpl)
}

// materializeFresh creates a new project at path from the language bundle
// rooted at langDir: the template system directory, the declared content
// folders, the inbox readme, and the rendered project configuration.
func materializeFresh(langDir, path string, lang catalog.Language, author, project string, now time.Time) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating project directory %s: %w", path, err)
	}

	if err := installSystem(langDir, path, lang, author, project, now); err != nil {
		return err
	}

	for _, folder := range lang.Folders {
		if err := os.MkdirAll(filepath.Join(path, folder), 0o755); err != nil {
			return fmt.Errorf("creating content folder %s: %w", folder, err)
		}
	}

	if lang.InboxReadme != "" {
		target := inboxTarget(lang.Folders)
		if target != "" {
			readme := filepath.Join(path, target, inboxReadmeName)
			if err := writeTextFile(readme, lang.InboxReadme); err != nil {
				return fmt.Errorf("writing inbox readme: %w", err)
			}
		}
	}

	return nil
}

// refreshSystem replaces the project's template system directory with a
// fresh copy from langDir and re-renders the project configuration. The
// content folders and everything in them are left untouched.
func refreshSystem(langDir, path string, lang catalog.Language, author, project string, now time.Time) error {
	return installSystem(langDir, path, lang, author, project, now)
}

// installSystem writes the template system directory from langDir,
// replacing any previous copy, and renders the project configuration into
// it.
func installSystem(langDir, path string, lang catalog.Language, author, project string, now time.Time) error {
	systemDir := filepath.Join(path, SystemDirName)
	if err := os.RemoveAll(systemDir); err != nil {
		return fmt.Errorf("clearing template system directory: %w", err)
	}

	skip := func(rel string) bool {
		return rel == catalog.LanguageDescriptorName
	}
	if err := copyTree(langDir, systemDir, skip); err != nil {
		return fmt.Errorf("copying template system: %w", err)
	}

	if lang.ConfigTemplate != "" {
		rendered := substitute(lang.ConfigTemplate, author, project, now)
		configPath := filepath.Join(systemDir, ProjectConfigName)
		if err := writeTextFile(configPath, rendered); err != nil {
			return fmt.Errorf("writing project configuration: %w", err)
		}
	}

	return nil
}

// copySystemFromSibling replaces the project's template system directory
// with a copy of the sibling project's.
func copySystemFromSibling(siblingPath, path string) error {
	src := filepath.Join(siblingPath, SystemDirName)
	dst := filepath.Join(path, SystemDirName)

	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("clearing template system directory: %w", err)
	}
	if err := copyTree(src, dst, nil); err != nil {
		return fmt.Errorf("copying template system from %s: %w", siblingPath, err)
	}
	return nil
}

// inboxTarget picks the folder that receives the inbox readme: the folder
// named "inbox" when declared, else the first declared folder.
func inboxTarget(folders []string) string {
	for _, folder := range folders {
		if folder == inboxFolderName {
			return folder
		}
	}
	if len(folders) > 0 {
		return folders[0]
	}
	return ""
}

// writeTextFile writes content ensuring a trailing newline; descriptor
// blocks carry none.
func writeTextFile(path, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// copyTree copies the directory tree at src to dst, preserving file
// modes. skip, when non-nil, filters entries by their slash-separated
// path relative to src; a skipped directory is pruned entirely.
func copyTree(src, dst string, skip func(rel string) bool) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel != "." && skip != nil && skip(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
}

// copyFile copies one regular file, preserving its mode.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }() // read-only source

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
