package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushagent/internal/types"
)

func TestPresent_TruncatesVisibleActionsButNotAttribution(t *testing.T) {
	p := types.PushPayload{
		NID: "n1",
		Actions: []types.RawAction{
			{Title: "Um"},
			{Title: "Dois"},
			{Title: "Três", URL: "https://x.test/3"},
		},
	}

	d, record := Present(p)
	assert.Len(t, d.Actions, types.MaxVisibleActions, "only the first two actions are rendered")
	require.Len(t, record.Actions, 3, "the attribution list is untruncated")
	assert.Equal(t, "tres", record.Actions[2].Action)
	assert.Equal(t, "https://x.test/3", record.Actions[2].URL)
}

func TestPresent_ExplicitSlugPassesThroughUnchanged(t *testing.T) {
	p := types.PushPayload{
		Actions: []types.RawAction{{Action: "Meu_Slug Custom", Title: "Ver Oferta"}},
	}

	d, record := Present(p)
	require.Len(t, d.Actions, 1)
	assert.Equal(t, "Meu_Slug Custom", d.Actions[0].Action, "explicit values are never re-slugified")
	assert.Equal(t, "Meu_Slug Custom", record.Actions[0].Action)
}

func TestPresent_DefaultsActionTitle(t *testing.T) {
	p := types.PushPayload{
		Actions: []types.RawAction{{URL: "https://x.test"}},
	}

	d, _ := Present(p)
	require.Len(t, d.Actions, 1)
	assert.Equal(t, types.DefaultActionTitle, d.Actions[0].Title)
	assert.Equal(t, FallbackSlug, d.Actions[0].Action)
}

func TestPresent_VisibleButtonsCarryNoURL(t *testing.T) {
	p := types.PushPayload{
		Actions: []types.RawAction{{Title: "Ver", URL: "https://x.test"}},
	}

	d, record := Present(p)
	require.Len(t, d.Actions, 1)
	assert.Empty(t, d.Actions[0].URL, "targets resolve from the attribution record, not the display")
	assert.Equal(t, "https://x.test", record.Actions[0].URL)
}

func TestPresent_CarriesPayloadFields(t *testing.T) {
	p := types.PushPayload{
		NID:   "n1",
		Title: "Oferta",
		Body:  "b",
		Icon:  "/i.png",
		Image: "/img.jpg",
		URL:   "https://x.test/fallback",
	}

	d, record := Present(p)
	assert.Equal(t, "Oferta", d.Title)
	assert.Equal(t, "b", d.Body)
	assert.Equal(t, "/i.png", d.Icon)
	assert.Equal(t, "/img.jpg", d.Image)
	assert.Equal(t, "n1", record.NID)
	assert.Equal(t, "https://x.test/fallback", record.URL)
}

func TestPresent_MalformedPayloadStillDisplayable(t *testing.T) {
	// A push body that failed structured parsing entirely normalizes to
	// defaults and must still produce a displayable descriptor.
	d, record := Present(Normalize([]byte("complete garbage")))
	assert.Equal(t, types.DefaultTitle, d.Title)
	assert.Equal(t, types.DefaultIcon, d.Icon)
	assert.Empty(t, d.Body)
	assert.Empty(t, record.NID)
}
