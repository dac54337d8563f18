package org

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPropertyExistingDrawer(t *testing.T) {
	content := "* TODO Task\n:PROPERTIES:\n:GH_ISSUE: 42\n:END:\nBody.\n"
	doc, err := Parse("t.org", content)
	require.NoError(t, err)

	h := doc.Items()[0].Handle
	require.NoError(t, doc.SetProperty(h, "GH_ISSUE", "99"))

	assert.Contains(t, doc.Content(), ":GH_ISSUE: 99")
	assert.NotContains(t, doc.Content(), ":GH_ISSUE: 42")
	assert.Equal(t, int64(99), doc.Items()[0].Issue)
}

func TestSetPropertyAddsToDrawer(t *testing.T) {
	content := "* TODO Task\n:PROPERTIES:\n:GH_ISSUE: 42\n:END:\n"
	doc, err := Parse("t.org", content)
	require.NoError(t, err)

	h := doc.Items()[0].Handle
	require.NoError(t, doc.SetProperty(h, "GH_URL", "https://example.com/42"))

	assert.Contains(t, doc.Content(), ":GH_ISSUE: 42")
	assert.Contains(t, doc.Content(), ":GH_URL: https://example.com/42")
	assert.Equal(t, "https://example.com/42", doc.Items()[0].URL)
}

func TestSetPropertyCreatesDrawer(t *testing.T) {
	content := "* TODO Task\nBody text.\n"
	doc, err := Parse("t.org", content)
	require.NoError(t, err)

	h := doc.Items()[0].Handle
	require.NoError(t, doc.SetProperty(h, "GH_ISSUE", "7"))

	assert.Equal(t, "* TODO Task\n:PROPERTIES:\n:GH_ISSUE: 7\n:END:\nBody text.\n", doc.Content())
	assert.Equal(t, int64(7), doc.Items()[0].Issue)
	assert.Equal(t, "Body text.", doc.Items()[0].Body)
}

func TestRemoveProperty(t *testing.T) {
	content := "* TODO Task\n:PROPERTIES:\n:GH_ISSUE: 42\n:GH_URL: u\n:END:\n"
	doc, err := Parse("t.org", content)
	require.NoError(t, err)

	h := doc.Items()[0].Handle
	require.NoError(t, doc.RemoveProperty(h, "GH_ISSUE"))
	require.NoError(t, doc.RemoveProperty(h, "GH_URL"))

	assert.NotContains(t, doc.Content(), "GH_ISSUE")
	assert.NotContains(t, doc.Content(), "GH_URL")
	assert.False(t, doc.Items()[0].Linked())

	// Removing an absent property is a no-op.
	require.NoError(t, doc.RemoveProperty(h, "GH_ISSUE"))
}

func TestSetStatus(t *testing.T) {
	content := "* TODO Task one\n* DONE Task two\n"
	doc, err := Parse("t.org", content)
	require.NoError(t, err)

	require.NoError(t, doc.SetStatus(doc.Items()[0].Handle, "DONE"))
	assert.Equal(t, "* DONE Task one\n* DONE Task two\n", doc.Content())
	assert.Equal(t, StatusDone, doc.Items()[0].Status)
}

func TestSetStatusPreservesAliasHeading(t *testing.T) {
	content := "* WONTFIX Old idea\n"
	doc, err := Parse("t.org", content)
	require.NoError(t, err)

	require.NoError(t, doc.SetStatus(doc.Items()[0].Handle, "TODO"))
	assert.Equal(t, "* TODO Old idea\n", doc.Content())
}

func TestHandlesStableAcrossEdits(t *testing.T) {
	content := "* TODO First\nBody.\n* TODO Second\n:PROPERTIES:\n:GH_ISSUE: 2\n:END:\n"
	doc, err := Parse("t.org", content)
	require.NoError(t, err)

	first := doc.Items()[0].Handle
	second := doc.Items()[1].Handle

	// Editing the first item grows the document; the second handle must
	// still address the right heading afterwards.
	require.NoError(t, doc.SetProperty(first, "GH_ISSUE", "1"))
	require.NoError(t, doc.SetProperty(second, "GH_URL", "https://example.com/2"))
	require.NoError(t, doc.SetStatus(second, "DONE"))

	items := doc.Items()
	assert.Equal(t, int64(1), items[0].Issue)
	assert.Equal(t, int64(2), items[1].Issue)
	assert.Equal(t, "https://example.com/2", items[1].URL)
	assert.Equal(t, StatusDone, items[1].Status)
	assert.Equal(t, "First", items[0].Title)
	assert.Equal(t, "Second", items[1].Title)
}

func TestInvalidHandle(t *testing.T) {
	doc, err := Parse("t.org", "* TODO Task\n")
	require.NoError(t, err)

	assert.Error(t, doc.SetProperty(Handle(5), "K", "v"))
	assert.Error(t, doc.SetStatus(Handle(-1), "DONE"))
}

func TestSetRepoReplaces(t *testing.T) {
	doc, err := Parse("t.org", "#+TITLE: Tasks\n#+GH_REPO: old/repo\n\n* TODO Task\n")
	require.NoError(t, err)

	doc.SetRepo("acme/rockets")
	assert.Equal(t, "acme/rockets", doc.Repo())
	assert.Contains(t, doc.Content(), "#+GH_REPO: acme/rockets")
	assert.NotContains(t, doc.Content(), "old/repo")
}

func TestSetRepoInsertsAfterFileKeywords(t *testing.T) {
	doc, err := Parse("t.org", "#+TITLE: Tasks\n\n* TODO Task\n")
	require.NoError(t, err)

	doc.SetRepo("acme/rockets")
	assert.Equal(t, "acme/rockets", doc.Repo())
	assert.Equal(t, "#+TITLE: Tasks\n#+GH_REPO: acme/rockets\n\n* TODO Task\n", doc.Content())
}

func TestSetRepoEmptyPreamble(t *testing.T) {
	doc, err := Parse("t.org", "* TODO Task\n")
	require.NoError(t, err)

	doc.SetRepo("acme/rockets")
	assert.Equal(t, "#+GH_REPO: acme/rockets\n* TODO Task\n", doc.Content())
}
