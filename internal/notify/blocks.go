package notify

import (
	"fmt"
	"strings"
	"time"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/techtransfer/internal/domain"
)

// maxListedFields caps the changed-field names shown for an update.
const maxListedFields = 8

// BuildAuditBlocks builds Slack Block Kit blocks for an audit record: the
// description, the names of changed fields for updates, and a context line
// with action, subject and time.
func BuildAuditBlocks(rec *domain.AuditRecord) []slacklib.Block {
	blocks := []slacklib.Block{
		slacklib.NewSectionBlock(
			slacklib.NewTextBlockObject(slacklib.MarkdownType, "*"+summary(rec)+"*", false, false),
			nil,
			nil,
		),
	}

	if rec.Action == domain.AuditActionUpdate && rec.AfterValues.Len() > 0 {
		names := rec.AfterValues.Names()
		more := ""
		if len(names) > maxListedFields {
			more = fmt.Sprintf(" and %d more", len(names)-maxListedFields)
			names = names[:maxListedFields]
		}
		text := "*Changed:* `" + strings.Join(names, "`, `") + "`" + more
		blocks = append(blocks, slacklib.NewSectionBlock(
			slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false),
			nil,
			nil,
		))
	}

	subject := "-"
	if ref, ok := rec.Subject(); ok {
		subject = fmt.Sprintf("%s #%s", ref.TypeName(), ref.ID)
	}
	meta := fmt.Sprintf("`%s` · %s · %s", rec.Action, subject, rec.CreatedAt.UTC().Format(time.RFC3339))
	blocks = append(blocks, slacklib.NewContextBlock("",
		slacklib.NewTextBlockObject(slacklib.MarkdownType, meta, false, false),
	))

	return blocks
}
