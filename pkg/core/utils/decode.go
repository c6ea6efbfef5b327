package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common defects in JSON fetched from upstream
// data vendors. Supported repairs:
// - Missing quotes around keys
// - Single quotes instead of double quotes
// - Unclosed arrays/objects
// - TRUE/FALSE/Null instead of true/false/null
// - Trailing commas
// - Comments
// - Leading/trailing whitespace and markdown code fences
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
// Hjson supports:
// - Comments (# // /* */)
// - Unquoted keys
// - Unquoted strings
// - Optional commas
// - Multiline strings
func ParseHJSON(data string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(data), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(jsonBytes), nil
}

// ParseHJSONToStruct parses Hjson directly into a Go struct. This is the
// recommended method when the schema is known, e.g. hand-edited field
// mapping overrides.
func ParseHJSONToStruct(data string, schema interface{}) error {
	if err := hjson.Unmarshal([]byte(data), schema); err != nil {
		return fmt.Errorf("HJSON_UNMARSHAL_ERROR: %v", err)
	}
	return nil
}

// DecodeLenient tries multiple parsing strategies to decode a payload.
// Order of attempts:
// 1. Standard JSON parse
// 2. JSON repair
// 3. Hjson parse (most lenient)
//
// Vendor endpoints occasionally ship payloads with trailing commas or a
// UTF-8 BOM; repair keeps those responses usable instead of failing the
// whole request.
func DecodeLenient(data []byte, schema interface{}) error {
	if err := json.Unmarshal(data, schema); err == nil {
		return nil
	}

	repaired, err := RepairJSON(string(data))
	if err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	hjsonResult, err := ParseHJSON(string(data))
	if err == nil {
		if err := json.Unmarshal([]byte(hjsonResult), schema); err == nil {
			return nil
		}
	}

	return fmt.Errorf("LENIENT_DECODE_FAILED: all parsing strategies failed")
}
