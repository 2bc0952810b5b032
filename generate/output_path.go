package generate

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"tfg/config"
	"tfg/content"
	"tfg/state"
)

const defaultBaseName = "fallbacks.generated"

// buildOutputPath returns constructed output file path/name. It uses either
// the default naming scheme or a user-defined template, cleans the result up
// and if requested transliterates it.
func buildOutputPath(t *content.Table, src, dst string, format config.ExportFmt, env *state.LocalEnv) string {
	if env.Cfg.Export.OutputNameTemplate == "" {
		return filepath.Join(dst, defaultBaseName+format.Ext())
	}

	expandedName := expandOutputNameTemplate(t, src, format, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(dst, defaultBaseName+format.Ext())
	}

	return assemblePathWithSubdirs(dst, expandedName, format, env)
}

func expandOutputNameTemplate(t *content.Table, src string, format config.ExportFmt, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Export.OutputNameTemplate, t, src, format)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expandedName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output
// path, cleaning and transliterating segments as needed.
func assemblePathWithSubdirs(outDir, expandedName string, format config.ExportFmt, env *state.LocalEnv) string {
	segments := strings.Split(expandedName, string(filepath.Separator))
	segments = slices.DeleteFunc(segments, func(s string) bool { return len(strings.TrimSpace(s)) == 0 })

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for i, segment := range segments {
		if env.Cfg.Export.FileNameTransliterate {
			segment = slug.Make(segment)
		}
		segment = config.SafeFileName(segment)
		if i == len(segments)-1 {
			segment += format.Ext()
		}
		parts = append(parts, segment)
	}
	if len(parts) == 1 {
		// degenerate template, all segments were empty
		parts = append(parts, defaultBaseName+format.Ext())
	}
	return filepath.Join(parts...)
}

// sourceBase derives a template-friendly name from whatever the scan source
// was: file, directory or archive.
func sourceBase(src string) string {
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == string(os.PathSeparator) || base == "." {
		base = defaultBaseName
	}
	return base
}
