package skills

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jingkaihe/mskills/pkg/skillerr"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	frontmatterPattern = regexp.MustCompile(`(?s)\A---\n(.*?)\n---`)
	namePattern        = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Validate reads <path>/SKILL.md and enforces the descriptor contract. Checks
// run in a fixed order and the first failing one is reported as a
// *skillerr.Error whose Kind names the failure.
func Validate(path string) (*Metadata, error) {
	descriptor := filepath.Join(path, DescriptorFileName)

	content, err := os.ReadFile(descriptor)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, skillerr.New(skillerr.DescriptorMissing, "%s not found in %s", DescriptorFileName, path)
		}
		return nil, skillerr.Wrap(err, skillerr.FilesystemError, "failed to read %s", descriptor)
	}

	normalized := strings.ReplaceAll(string(content), "\r\n", "\n")
	match := frontmatterPattern.FindStringSubmatch(normalized)
	if match == nil {
		return nil, skillerr.New(skillerr.FrontmatterMissing, "%s must start with YAML frontmatter delimited by ---", DescriptorFileName)
	}

	var doc any
	if err := yaml.Unmarshal([]byte(match[1]), &doc); err != nil {
		return nil, skillerr.New(skillerr.FrontmatterMalformed, "failed to parse YAML frontmatter: %v", err)
	}
	if doc == nil {
		return nil, skillerr.New(skillerr.FrontmatterEmpty, "frontmatter is empty or invalid")
	}

	// A scalar or list document has no fields, so it fails on the name check.
	fields, _ := doc.(map[string]any)

	name, err := requireString(fields, "name", skillerr.NameMissing, skillerr.NameNotString)
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(name); n < 1 || n > MaxNameLength {
		return nil, skillerr.New(skillerr.NameLengthInvalid, "'name' must be between 1 and %d characters", MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return nil, skillerr.New(skillerr.NameFormatInvalid,
			"'name' may only contain lowercase alphanumeric characters and hyphens, and cannot start/end with a hyphen or contain consecutive hyphens")
	}

	description, err := requireString(fields, "description", skillerr.DescriptionMissing, skillerr.DescriptionNotString)
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(description); n < 1 || n > MaxDescriptionLength {
		return nil, skillerr.New(skillerr.DescriptionLengthInvalid, "'description' must be between 1 and %d characters", MaxDescriptionLength)
	}

	dirName := filepath.Base(path)
	if name != dirName {
		return nil, skillerr.New(skillerr.NameDirectoryMismatch,
			"skill name '%s' in %s does not match directory name '%s'", name, DescriptorFileName, dirName)
	}

	meta := decodeMetadata(fields)
	meta.Name = name
	meta.Description = description
	return meta, nil
}

// requireString treats an absent, null or empty value as missing and any
// other non-string value as the wrong type.
func requireString(fields map[string]any, key string, missing, notString skillerr.Kind) (string, error) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return "", skillerr.New(missing, "frontmatter must include a '%s' field", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", skillerr.New(notString, "'%s' field must be a string", key)
	}
	if s == "" {
		return "", skillerr.New(missing, "frontmatter must include a '%s' field", key)
	}
	return s, nil
}

// decodeMetadata fills the optional fields. They are free-form, so a field
// that cannot be decoded is left empty rather than failing validation.
func decodeMetadata(fields map[string]any) *Metadata {
	meta := &Metadata{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           meta,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return meta
	}

	for _, key := range []string{"license", "compatibility", "metadata", "allowed-tools"} {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		_ = decoder.Decode(map[string]any{key: v})
	}
	return meta
}
