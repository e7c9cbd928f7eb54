package models

import (
	"slices"
	"time"
)

// Master data types.
const (
	MasterDataRoles          = "roles"
	MasterDataPermissions    = "permissions"
	MasterDataModules        = "modules"
	MasterDataConfigurations = "configurations"
)

var MasterDataTypes = []string{MasterDataRoles, MasterDataPermissions, MasterDataModules, MasterDataConfigurations}

// IsMasterDataType reports whether t is a known master data type.
func IsMasterDataType(t string) bool {
	return slices.Contains(MasterDataTypes, t)
}

// MasterData is a versioned reference record keyed by (DataType, DataKey).
type MasterData struct {
	ID          string
	DataType    string
	DataKey     string
	DataValue   map[string]any
	Description string
	IsActive    bool
	Version     int
	LastSynced  *time.Time
}

// MasterDataSet groups records as set[type][key] = value fields plus
// description, version, last_synced and is_active.
type MasterDataSet map[string]map[string]map[string]any

// GroupMasterData builds the grouped view of records.
func GroupMasterData(records []*MasterData) MasterDataSet {
	set := MasterDataSet{}
	for _, r := range records {
		byKey, ok := set[r.DataType]
		if !ok {
			byKey = map[string]map[string]any{}
			set[r.DataType] = byKey
		}
		item := make(map[string]any, len(r.DataValue)+4)
		for k, v := range r.DataValue {
			item[k] = v
		}
		item["description"] = r.Description
		item["version"] = r.Version
		item["last_synced"] = r.LastSynced
		item["is_active"] = r.IsActive
		byKey[r.DataKey] = item
	}
	return set
}
