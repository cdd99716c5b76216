package cachestat

import (
	"fmt"

	"github.com/pingcap/cache-monitoring/component/cachestat/source"
	"github.com/pingcap/cache-monitoring/config"
)

// UnusedCacheLabel labels the residual sample appended in configured-total mode.
const UnusedCacheLabel = "Unused Cache"

// DenominatorMode selects what reported percentages are relative to.
type DenominatorMode string

const (
	DenominatorUsedSum         DenominatorMode = config.DenominatorUsedSum
	DenominatorConfiguredTotal DenominatorMode = config.DenominatorConfiguredTotal
)

// StorableObjectRef identifies one object of one database.
type StorableObjectRef struct {
	Database string
	Name     string
	Kind     source.ObjectKind
}

// Label is the human readable qualified name, "{db}.{object}".
func (r StorableObjectRef) Label() string {
	return r.Database + "." + r.Name
}

func (r StorableObjectRef) indexLabel(index string) string {
	return fmt.Sprintf("%s (index: %s)", r.Label(), index)
}

type CacheSample struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// CacheSummary is the result of one cycle. It is built fresh every cycle
// and never modified afterwards.
type CacheSummary struct {
	Samples         []CacheSample   `json:"samples"`
	Denominator     int64           `json:"denominator"`
	UsedSum         int64           `json:"used_sum"`
	TotalConfigured int64           `json:"total_configured"`
	Mode            DenominatorMode `json:"mode"`
}
