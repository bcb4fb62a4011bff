package proposals

import (
	"encoding/json"
	"fmt"

	"agroshare-backend/internal/pkg/apperr"
)

// Proposal asset types.
const (
	AssetTypeAnimal    = "animal"
	AssetTypeCrop      = "crop"
	AssetTypeBeehive   = "beehive"
	AssetTypeEquipment = "equipment"
)

// Required payload keys per asset type. The payload stays schemaless beyond
// these; extra keys pass through untouched.
var assetRequiredFields = map[string][]string{
	AssetTypeAnimal:    {"species", "count"},
	AssetTypeCrop:      {"culture", "area_hectares"},
	AssetTypeBeehive:   {"hive_count"},
	AssetTypeEquipment: {"name", "year"},
}

// ValidateAsset checks that the asset payload matches its declared type.
func ValidateAsset(assetType string, asset json.RawMessage) error {
	required, ok := assetRequiredFields[assetType]
	if !ok {
		return apperr.InvalidInput("unknown asset_type").WithDetail("asset_type", assetType)
	}
	if len(asset) == 0 {
		return apperr.InvalidInput("asset is required")
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(asset, &fields); err != nil {
		return apperr.InvalidInput("asset must be a JSON object")
	}
	for _, f := range required {
		if v, ok := fields[f]; !ok || v == nil || v == "" {
			return apperr.InvalidInput(fmt.Sprintf("asset is missing required field: %s", f)).
				WithDetail("asset_type", assetType)
		}
	}
	return nil
}
