package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// mergeUser folds a (possibly partial) server echo into the cached
// user: a shallow merge at the top level plus one level of nested merge
// under "profile". The merge works on raw JSON maps so that a field
// absent from the response survives from cache, while a field the
// server explicitly nulled is honored as a removal.
func mergeUser(cached *model.User, resp json.RawMessage) (*model.User, error) {
	base, err := toMap(cached)
	if err != nil {
		return nil, err
	}

	var echo map[string]any
	if len(resp) > 0 {
		if err = json.Unmarshal(resp, &echo); err != nil {
			return nil, fmt.Errorf("decode update response: %w", err)
		}
	}

	merged := make(map[string]any, len(base)+len(echo))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range echo {
		if k == "profile" {
			if sub, ok := v.(map[string]any); ok {
				merged[k] = mergeProfile(base[k], sub)
				continue
			}
		}
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("reencode merged user: %w", err)
	}
	var out model.User
	if err = json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode merged user: %w", err)
	}
	return &out, nil
}

func mergeProfile(cached any, echo map[string]any) map[string]any {
	base, _ := cached.(map[string]any)
	merged := make(map[string]any, len(base)+len(echo))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range echo {
		merged[k] = v
	}
	return merged
}

func toMap(u *model.User) (map[string]any, error) {
	if u == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode cached user: %w", err)
	}
	var out map[string]any
	if err = json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return out, nil
}
