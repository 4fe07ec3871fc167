package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"
)

var templateFiles = []string{
	"grafana-dashboard.json.tmpl",
}

func rootDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(filepath.Dir(filepath.Dir(file)))
}

// Render parses dashboard templates and writes rendered dashboards to outDir.
// Templates reference the GreptimeDB datasource through the
// GREPTIMEDB_DATASOURCE_UID environment variable.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	base := rootDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, tplName := range templateFiles {
		if err := renderFile(filepath.Join(base, tplName), outDir, funcMap); err != nil {
			return err
		}
	}
	return nil
}

// renderFile renders one dashboard template into outDir. A .json dashboard
// must come out as valid JSON or Grafana will refuse the import, so a broken
// rendering fails here instead of producing a dead file.
func renderFile(path, outDir string, funcMap template.FuncMap) error {
	t, err := template.New(filepath.Base(path)).Funcs(funcMap).ParseFiles(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, nil); err != nil {
		return err
	}
	outPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(path), ".tmpl"))
	if strings.HasSuffix(outPath, ".json") && !json.Valid(buf.Bytes()) {
		return fmt.Errorf("rendered dashboard %s is not valid JSON", filepath.Base(outPath))
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}
