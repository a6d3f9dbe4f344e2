package hxblog

// SwapMode is an hx-swap strategy. The default is SwapOuter, which replaces
// the whole island so its root attributes (state, triggers) are refreshed.
type SwapMode string

const (
	SwapOuter SwapMode = "outerHTML"
	SwapInner SwapMode = "innerHTML"

	// SwapNone discards the response body. Headers such as HX-Trigger are
	// still processed.
	SwapNone SwapMode = "none"
)
