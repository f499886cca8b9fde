package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every job-work table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Vendor{},
		&Material{},
		&JobOrder{},
		&JobOrderIssuedMaterial{},
		&JobOrderReceivedMaterial{},
		&User{},
		&Counter{},
	)
}

// Job work types a vendor can perform.
const (
	JobWorkKnitting  = "Knitting"
	JobWorkDyeing    = "Dyeing"
	JobWorkPrinting  = "Printing"
	JobWorkStitching = "Stitching"
	JobWorkFinishing = "Finishing"
)

var JobWorkTypes = []string{JobWorkKnitting, JobWorkDyeing, JobWorkPrinting, JobWorkStitching, JobWorkFinishing}

// Material types
const (
	MaterialTypeYarn           = "Yarn"
	MaterialTypeGreyFabric     = "Grey Fabric"
	MaterialTypeFinishedFabric = "Finished Fabric"
)

var MaterialTypes = []string{MaterialTypeYarn, MaterialTypeGreyFabric, MaterialTypeFinishedFabric}

// Units of measure
const (
	UnitKg     = "kg"
	UnitMeters = "meters"
	UnitPieces = "pieces"
)

var Units = []string{UnitKg, UnitMeters, UnitPieces}

// Material locations
const (
	LocationWarehouse = "Internal Warehouse"
	LocationVendor    = "Vendor"
)

var Locations = []string{LocationWarehouse, LocationVendor}

// StringList is a string slice stored as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan StringList: %v", value)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}
