package report

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(rows int) *Document {
	table := &Table{
		Columns: []Column{
			{Title: "Student Name", Width: 55},
			{Title: "Admission Number", Width: 40},
			{Title: "Phone", Width: 35},
			{Title: "Marks Obtained", Width: 33},
			{Title: "Percentage", Width: 32},
		},
	}
	for i := 0; i < rows; i++ {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("Student %d", i+1),
			fmt.Sprintf("PCC7th%05d", i+1),
			"N/A",
			"45.0",
			"90.00%",
		})
	}

	return &Document{
		Title: "Padashetty Coaching Class - Unit 1 Results",
		Fields: []Field{
			{Label: "Subject", Value: "Maths"},
			{Label: "Class", Value: "7th"},
		},
		Table:     table,
		Notes:     []string{"Join our WhatsApp group for more updates:", "https://chat.whatsapp.com/example"},
		QRCode:    "https://chat.whatsapp.com/example",
		CreatedAt: time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderIsReproducible(t *testing.T) {
	r := NewRenderer()

	var first, second bytes.Buffer
	require.NoError(t, r.Render(&first, sampleDocument(3)))
	require.NoError(t, r.Render(&second, sampleDocument(3)))

	assert.True(t, bytes.HasPrefix(first.Bytes(), []byte("%PDF-")))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestRenderDiffersWithContent(t *testing.T) {
	r := NewRenderer()

	var a, b bytes.Buffer
	require.NoError(t, r.Render(&a, sampleDocument(2)))
	require.NoError(t, r.Render(&b, sampleDocument(3)))

	assert.NotEqual(t, a.Bytes(), b.Bytes())
}

func TestRenderLongTableSpansPages(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewRenderer().Render(&out, sampleDocument(80)))

	pages := bytes.Count(out.Bytes(), []byte("/Type /Page\n"))
	assert.Greater(t, pages, 1)
}

func TestRenderFieldsOnly(t *testing.T) {
	doc := &Document{
		Title: "Test Result: Unit 1",
		Fields: []Field{
			{Label: "Student", Value: "Asha Rao"},
			{Label: "Percentage", Value: "90.00%"},
		},
		CreatedAt: time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
	}

	var out bytes.Buffer
	require.NoError(t, NewRenderer().Render(&out, doc))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

func TestRenderNilDocument(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, NewRenderer().Render(&out, nil))
}
