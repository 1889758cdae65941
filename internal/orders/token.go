package orders

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Page tokens are an opaque base64 encoding of the store's resume position
// (DynamoDB LastEvaluatedKey). All key attributes here are strings:
// order_id on the table, plus status/created_at on the GSI.

func encodeToken(key map[string]types.AttributeValue) string {
	if len(key) == 0 {
		return ""
	}
	flat := make(map[string]string, len(key))
	for k, v := range key {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			flat[k] = s.Value
		}
	}
	b, err := json.Marshal(flat)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// decodeToken returns nil for an empty or malformed token, which makes the
// list restart from the beginning instead of failing the request.
func decodeToken(token string) map[string]types.AttributeValue {
	if token == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		slog.Warn("malformed page token, restarting list", "error", err)
		return nil
	}
	var flat map[string]string
	if err := json.Unmarshal(b, &flat); err != nil {
		slog.Warn("malformed page token, restarting list", "error", err)
		return nil
	}
	if len(flat) == 0 {
		return nil
	}
	key := make(map[string]types.AttributeValue, len(flat))
	for k, v := range flat {
		key[k] = &types.AttributeValueMemberS{Value: v}
	}
	return key
}
