package renderer

import (
	"bytes"

	"github.com/etnz/stocks/docs"
	md "github.com/nao1215/markdown"
)

// TopicsMarkdown renders the list of help topics.
func TopicsMarkdown(topics []docs.Topic) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Topics")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"Topic", "Summary"},
	}
	for _, t := range topics {
		table.Rows = append(table.Rows, []string{md.Code(t.Name), t.Summary})
	}
	doc.Table(table)
	doc.PlainText("Read one with `sap topic <topic>`.")
	return doc.String()
}
