package config

import "fmt"

// ExportFmt is the requested output artifact type.
type ExportFmt int

const (
	ExportFmtTypeScript ExportFmt = iota
	ExportFmtJSON
	ExportFmtXML
)

var exportFmtNames = []string{"typescript", "json", "xml"}

func ExportFmtNames() []string {
	names := make([]string, len(exportFmtNames))
	copy(names, exportFmtNames)
	return names
}

func ParseExportFmt(s string) (ExportFmt, error) {
	for i, n := range exportFmtNames {
		if s == n {
			return ExportFmt(i), nil
		}
	}
	return ExportFmtTypeScript, fmt.Errorf("unknown export format %q", s)
}

func (f ExportFmt) String() string {
	if f < 0 || int(f) >= len(exportFmtNames) {
		// this should never happen
		panic("unsupported format requested")
	}
	return exportFmtNames[f]
}

func (f ExportFmt) Ext() string {
	switch f {
	case ExportFmtTypeScript:
		return ".ts"
	case ExportFmtJSON:
		return ".json"
	case ExportFmtXML:
		return ".xml"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

func (f *ExportFmt) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseExportFmt(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f ExportFmt) MarshalYAML() (any, error) {
	return f.String(), nil
}

// FileOrder is the deterministic sequence in which discovered content files
// are processed.
type FileOrder int

const (
	FileOrderLexical FileOrder = iota
	FileOrderNatural
)

var fileOrderNames = []string{"lexical", "natural"}

func ParseFileOrder(s string) (FileOrder, error) {
	for i, n := range fileOrderNames {
		if s == n {
			return FileOrder(i), nil
		}
	}
	return FileOrderLexical, fmt.Errorf("unknown file order %q", s)
}

func (o FileOrder) String() string {
	if o < 0 || int(o) >= len(fileOrderNames) {
		// this should never happen
		panic("unsupported file order requested")
	}
	return fileOrderNames[o]
}

func (o *FileOrder) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseFileOrder(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o FileOrder) MarshalYAML() (any, error) {
	return o.String(), nil
}
