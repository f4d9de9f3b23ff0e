package manifest

import (
	"fmt"
	"strings"
)

// Violation is an authored defect in the manifest file.
type Violation struct {
	Entry   string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Entry, v.Message)
}

// Check reports authored defects. Ids that do not exist in the catalog are
// not checked here; the audit reports them as orphans.
func (m *Manifest) Check() []Violation {
	if m == nil {
		return nil
	}
	var out []Violation
	seenRefs := make(map[string]struct{}, len(m.Entries))
	for i, entry := range m.Entries {
		ref := entry.Ref()
		if strings.TrimSpace(entry.Section) == "" || strings.TrimSpace(entry.View) == "" {
			ref = fmt.Sprintf("entry #%d", i+1)
			out = append(out, Violation{Entry: ref, Message: "section and view are required"})
		} else if _, dup := seenRefs[ref]; dup {
			out = append(out, Violation{Entry: ref, Message: "duplicate section/view"})
		}
		seenRefs[ref] = struct{}{}

		ids := make(map[string]struct{}, len(entry.Covers))
		for _, id := range entry.Covers {
			if _, dup := ids[id]; dup {
				out = append(out, Violation{Entry: ref, Message: fmt.Sprintf("covers %q more than once", id)})
			}
			ids[id] = struct{}{}
		}

		switch {
		case !entry.Genuine && len(entry.Covers) > 0:
			out = append(out, Violation{Entry: ref, Message: "placeholder entry declares coverage"})
		case !entry.Genuine && entry.Persistent:
			out = append(out, Violation{Entry: ref, Message: "placeholder entry marked persistent"})
		case entry.Genuine && len(entry.Covers) == 0:
			out = append(out, Violation{Entry: ref, Message: "genuine entry covers no modules"})
		}
	}
	return out
}
