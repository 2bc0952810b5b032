package generate

import (
	"fmt"
	"os"

	"tfg/config"
	"tfg/content"
)

// export writes the accumulated table to the output file in the requested
// format. The table is written even when empty - consumers rely on the
// artifact always being present.
func export(t *content.Table, format config.ExportFmt, outputName string) error {
	f, err := os.Create(outputName)
	if err != nil {
		return fmt.Errorf("unable to create output file '%s': %w", outputName, err)
	}
	defer f.Close()

	switch format {
	case config.ExportFmtTypeScript:
		err = exportTypeScript(t, f)
	case config.ExportFmtJSON:
		err = exportJSON(t, f)
	case config.ExportFmtXML:
		err = exportXML(t, f)
	default:
		// this should never happen
		panic("unsupported format requested")
	}
	if err != nil {
		return err
	}
	return f.Sync()
}
