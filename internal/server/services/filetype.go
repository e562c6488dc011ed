package services

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fe/internal/common"
)

// ResolveFileType picks the stored type of a file payload: the client's
// value, else a guess from the extension, else a sniff of the content.
func ResolveFileType(fileName, clientType string, content []byte) string {
	if !common.IsSentinel(strings.TrimSpace(clientType)) {
		return strings.TrimSpace(clientType)
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byExt != "" {
		return baseMediaType(byExt)
	}
	if len(content) > 0 {
		return baseMediaType(http.DetectContentType(content))
	}
	return common.DefaultFileType
}

func baseMediaType(t string) string {
	mt, _, err := mime.ParseMediaType(t)
	if err != nil || mt == "" {
		return common.DefaultFileType
	}
	return mt
}
