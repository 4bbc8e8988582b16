package aws

import "context"

// CollectPages drains an SDK paginator into one slice. hasMore and nextPage
// wrap the paginator's methods; extract pulls the items out of each page.
func CollectPages[Output any, Item any](
	ctx context.Context,
	hasMore func() bool,
	nextPage func(context.Context) (Output, error),
	extract func(Output) []Item,
) ([]Item, error) {
	var items []Item
	for hasMore() {
		page, err := nextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, extract(page)...)
	}
	return items, nil
}
