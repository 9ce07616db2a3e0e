package agent

import "pushagent/internal/types"

// Present builds the platform-facing display descriptor and the attribution
// record for one normalized push payload.
//
// The descriptor carries at most types.MaxVisibleActions buttons -- the
// first entries of the payload's action list, each given a slug (provided
// value passes through unchanged; otherwise the slugified title) and a title
// (defaulted when absent). The attribution record carries the full,
// untruncated action list under the same slugging rule, so the click
// resolver can still attribute an interaction the display surface chose not
// to render -- though only the visible buttons are ever clickable.
//
// Present is pure; the caller owns the display side effect.
func Present(p types.PushPayload) (types.DisplayDescriptor, types.AttributionRecord) {
	visible := len(p.Actions)
	if visible > types.MaxVisibleActions {
		visible = types.MaxVisibleActions
	}

	descriptor := types.DisplayDescriptor{
		Title: p.Title,
		Body:  p.Body,
		Icon:  p.Icon,
		Image: p.Image,
	}
	for _, a := range p.Actions[:visible] {
		d := describeAction(a)
		// Visible buttons carry no URL; the target is resolved from the
		// attribution record at click time.
		d.URL = ""
		descriptor.Actions = append(descriptor.Actions, d)
	}

	record := types.AttributionRecord{
		NID: p.NID,
		URL: p.URL,
	}
	for _, a := range p.Actions {
		record.Actions = append(record.Actions, describeAction(a))
	}

	return descriptor, record
}

// describeAction resolves a raw payload action into a full descriptor.
// An explicit slug is never re-slugified.
func describeAction(a types.RawAction) types.ActionDescriptor {
	slug := a.Action
	if slug == "" {
		slug = Slugify(a.Title)
	}
	title := a.Title
	if title == "" {
		title = types.DefaultActionTitle
	}
	return types.ActionDescriptor{Action: slug, Title: title, URL: a.URL}
}
