package cache

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/opensource-finance/bce/internal/domain"
)

// ItemKey is the cache key of an exception item.
func ItemKey(itemNo int) string {
	return "item:" + strconv.Itoa(itemNo)
}

func encodeItem(item *domain.ExceptionItem) ([]byte, error) {
	if item == nil || item.ItemNo <= 0 {
		return nil, fmt.Errorf("%w: exception item needs an item number", domain.ErrInvalidInput)
	}
	return json.Marshal(item)
}

func decodeItem(data []byte) (*domain.ExceptionItem, error) {
	if data == nil {
		return nil, nil
	}
	var item domain.ExceptionItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("corrupt cached exception item: %w", err)
	}
	return &item, nil
}

// errTenantRequired is returned by every cache when tenantID is empty.
var errTenantRequired = fmt.Errorf("%w: tenantID is required", domain.ErrInvalidInput)
