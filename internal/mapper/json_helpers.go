package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func jsonToMap(raw datatypes.JSON) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func jsonToStringSlice(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func jsonToCountMap(raw datatypes.JSON) map[string]int64 {
	if len(raw) == 0 {
		return map[string]int64{}
	}
	var out map[string]int64
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]int64{}
	}
	return out
}
