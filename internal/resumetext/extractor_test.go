package resumetext

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_UnsupportedExtension(t *testing.T) {
	ex := NewFileExtractor()
	for _, name := range []string{"resume.txt", "resume.doc", "resume", "resume.png"} {
		_, err := ex.Extract(name, []byte("data"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat, "file %q", name)
	}
}

func TestExtract_CorruptPDF(t *testing.T) {
	ex := NewFileExtractor()
	_, err := ex.Extract("resume.pdf", []byte("not a pdf at all"))
	require.Error(t, err)
}

// buildDocx assembles a minimal valid .docx archive around document.xml.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtract_DocxParagraphs(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>Skills: Python, </w:t></w:r><w:r><w:t>SQL</w:t></w:r></w:p>
  </w:body>
</w:document>`

	ex := NewFileExtractor()
	text, err := ex.Extract("resume.docx", buildDocx(t, doc))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Jane Doe", lines[0])
	assert.Equal(t, "Skills: Python, SQL", lines[1])
}

func TestExtract_DocxWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ex := NewFileExtractor()
	_, err = ex.Extract("resume.docx", buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document.xml")
}

func TestExtract_DocxNotAZip(t *testing.T) {
	ex := NewFileExtractor()
	_, err := ex.Extract("resume.docx", []byte("plain bytes"))
	require.Error(t, err)
}
