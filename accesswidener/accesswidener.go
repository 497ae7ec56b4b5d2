// Package accesswidener rewrites access widener files from named to
// intermediary names.
package accesswidener

import (
	"log/slog"
	"strings"

	"github.com/Alia5/mixremap/mappings"
)

// Namespace is written into the rewritten header.
const Namespace = "intermediary"

// Stats counts the rewritten entries per kind.
type Stats struct {
	Classes int `json:"classes" yaml:"classes" toml:"classes"`
	Fields  int `json:"fields" yaml:"fields" toml:"fields"`
	Methods int `json:"methods" yaml:"methods" toml:"methods"`
	Misses  int `json:"misses" yaml:"misses" toml:"misses"`
}

func accessKind(s string) bool {
	switch strings.TrimPrefix(s, "transitive-") {
	case "accessible", "mutable", "extendable":
		return true
	}
	return false
}

// Remap rewrites src line by line. Lines it does not understand are kept
// verbatim. Output lines are joined with \n.
func Remap(src []byte, res *mappings.Resolver, logger *slog.Logger) ([]byte, Stats, error) {
	var stats Stats
	lines := strings.Split(string(src), "\n")
	out := make([]string, 0, len(lines))

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		cols := strings.Fields(line)
		if len(cols) == 0 || strings.HasPrefix(cols[0], "#") {
			out = append(out, line)
			continue
		}

		switch {
		case cols[0] == "accessWidener" && len(cols) >= 2:
			out = append(out, "accessWidener\t"+cols[1]+"\t"+Namespace)

		case accessKind(cols[0]) && len(cols) >= 3 && cols[1] == "class":
			name := cols[2]
			if e := res.Index.FindClass(name); e != nil {
				name = e.Intermediary
				stats.Classes++
			} else {
				logger.Debug("Access widener class not mapped", "class", name)
			}
			out = append(out, cols[0]+"\tclass\t"+name)

		case accessKind(cols[0]) && len(cols) >= 5 && (cols[1] == "field" || cols[1] == "method"):
			rewritten, err := remapMember(cols, res, &stats, logger)
			if err != nil {
				return nil, stats, err
			}
			if rewritten == "" {
				rewritten = line
			}
			out = append(out, rewritten)

		default:
			out = append(out, line)
		}
	}
	return []byte(strings.Join(out, "\n")), stats, nil
}

// remapMember returns "" when the owner is unknown so the caller keeps the
// line as written.
func remapMember(cols []string, res *mappings.Resolver, stats *Stats, logger *slog.Logger) (string, error) {
	access, kind, owner, name, desc := cols[0], cols[1], cols[2], cols[3], cols[4]
	cls := res.Index.FindClass(owner)
	if cls == nil {
		logger.Debug("Access widener owner not mapped", "owner", owner, "member", name)
		return "", nil
	}

	var (
		mapped string
		e      *mappings.Entry
		err    error
	)
	if kind == "field" {
		mapped = res.Index.MapDescriptor(desc)
		e = res.FieldDesc(name, mapped, cls.Intermediary)
	} else {
		mapped, err = res.Index.MapMethodDescriptor(desc)
		if err != nil {
			return "", err
		}
		e, err = res.Method(name+mapped, cls.Intermediary)
		if err != nil {
			return "", err
		}
	}

	if e == nil {
		logger.Warn("Access widener member not found", "owner", owner, "member", name, "descriptor", desc)
		stats.Misses++
		return strings.Join([]string{access, kind, cls.Intermediary, name, mapped}, "\t"), nil
	}
	if kind == "field" {
		stats.Fields++
	} else {
		stats.Methods++
	}
	return strings.Join([]string{access, kind, cls.Intermediary, e.Intermediary, e.Descriptor}, "\t"), nil
}
