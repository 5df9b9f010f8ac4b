// Package importer turns a resume file into normalized resume fields.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

const maxFileBytes = 10 << 20

// Resume is the outcome of an import: fields ready to become a draft.
type Resume struct {
	Title    string
	Template string
	Data     model.ResumeData
}

// FileImporter imports one file from disk.
type FileImporter struct {
	Path     string
	Template string
}

// Import reads and normalizes the file.
func (f FileImporter) Import(ctx context.Context) (Resume, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return Resume{}, fmt.Errorf("stat %s: %w", f.Path, err)
	}
	if info.Size() > maxFileBytes {
		return Resume{}, fmt.Errorf("%s is larger than %d bytes", f.Path, maxFileBytes)
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return Resume{}, fmt.Errorf("read %s: %w", f.Path, err)
	}
	res, err := FromBytes(ctx, raw, filepath.Base(f.Path))
	if err != nil {
		return Resume{}, err
	}
	if res.Template == "" {
		res.Template = f.Template
	}
	telemetry.Info("importer.imported", map[string]any{
		"file":       filepath.Base(f.Path),
		"experience": len(res.Data.Experience),
		"skills":     len(res.Data.Skills),
		"has_email":  res.Data.PersonalInfo.Email != "",
	})
	return res, nil
}

type jsonExport struct {
	Title    string            `json:"title"`
	Template string            `json:"template"`
	Data     *model.ResumeData `json:"data"`
}

// FromBytes normalizes an in-memory file. JSON is taken as resume data, either
// bare or wrapped as {title, template, data}.
func FromBytes(ctx context.Context, raw []byte, fileName string) (Resume, error) {
	if detectType(fileName, raw) == mimeJSON {
		return fromJSON(raw)
	}
	text, err := ExtractText(ctx, raw, fileName)
	if err != nil {
		return Resume{}, err
	}
	data := ParseText(text)
	return Resume{Title: model.TitleFor(data), Data: data}, nil
}

func fromJSON(raw []byte) (Resume, error) {
	var wrapped jsonExport
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		title := strings.TrimSpace(wrapped.Title)
		if title == "" {
			title = model.TitleFor(*wrapped.Data)
		}
		return Resume{Title: title, Template: wrapped.Template, Data: *wrapped.Data}, nil
	}
	var data model.ResumeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return Resume{}, fmt.Errorf("decode resume json: %w", err)
	}
	return Resume{Title: model.TitleFor(data), Data: data}, nil
}
