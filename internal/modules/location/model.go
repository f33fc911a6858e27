// README: Static location hierarchy: districts containing villages.
package location

import "mashwar/internal/types"

type Village struct {
	ID     types.ID
	Name   string
	Center types.Point
}

type District struct {
	ID       types.ID
	Name     string
	Villages []Village
}
