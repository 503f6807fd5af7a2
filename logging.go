package dotstate

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotstate/dotstate/diff"
)

var (
	editStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	newStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	deletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	arrayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
)

func kindLabel(k diff.Kind) string {
	switch k {
	case diff.KindEdit:
		return editStyle.Render("EDIT")
	case diff.KindNew:
		return newStyle.Render("NEW")
	case diff.KindDeleted:
		return deletedStyle.Render("DELETE")
	case diff.KindArray:
		return arrayStyle.Render("ARRAY")
	default:
		return k.String()
	}
}

// renderRecord formats one diff record as a single log line fragment.
func renderRecord(r diff.Record) string {
	switch r.Kind {
	case diff.KindEdit:
		return fmt.Sprintf("%s %s: %v -> %v", kindLabel(r.Kind), r.Path, r.Old, r.New)
	case diff.KindNew:
		return fmt.Sprintf("%s %s: %v", kindLabel(r.Kind), r.Path, r.New)
	case diff.KindDeleted:
		return fmt.Sprintf("%s %s: %v", kindLabel(r.Kind), r.Path, r.Old)
	case diff.KindArray:
		item := ""
		if r.Item != nil {
			switch r.Item.Kind {
			case diff.KindNew:
				item = fmt.Sprintf("+%v", r.Item.New)
			case diff.KindDeleted:
				item = fmt.Sprintf("-%v", r.Item.Old)
			default:
				item = r.Item.Kind.String()
			}
		}
		return fmt.Sprintf("%s %s[%d]: %s", kindLabel(r.Kind), r.Path, r.Index, item)
	default:
		return fmt.Sprintf("%s %s", r.Kind.String(), r.Path)
	}
}

// DiffLogging is the after-middleware behind the diff-logging flag: one log
// line per change record.
func DiffLogging[T any]() Middleware[T] {
	return Middleware[T]{
		Name: "diff-logging",
		Fn: func(mc *MiddlewareCtx[T]) error {
			for _, rec := range mc.Diff {
				mc.Config.Logger.Info("state change",
					"store", mc.Store,
					"action", mc.Action,
					"update", mc.UpdateID.String(),
					"change", renderRecord(rec),
				)
			}
			return nil
		},
	}
}
