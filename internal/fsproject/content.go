package fsproject

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"

	"github.com/zjrosen/panekit/internal/project"
)

var markdownExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdown":    true,
}

// classifyContent picks the model kind for a file: markdown by extension,
// text by sniffed MIME type, and everything else as a blob.
func classifyContent(p project.Path, entry project.EntryID, data []byte) project.Item {
	mtype := mimetype.Detect(data)
	text := isText(mtype)

	if text && markdownExts[strings.ToLower(path.Ext(p.Rel))] {
		return project.NewDocument(p, entry, string(data))
	}
	if text {
		return project.NewBuffer(p, entry, string(data), detectCharset(data))
	}
	return project.NewBlob(p, entry, data, mtype.String())
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func detectCharset(data []byte) string {
	if len(data) == 0 {
		return "UTF-8"
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "UTF-8"
	}
	return result.Charset
}
