package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-rna/idprop"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_settings.json")

	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder(buildOptions(tc)...)

			ctx := Context{
				Key:  tc.Key,
				Name: tc.Root,
			}

			result, err := decoder.Decode(ctx, tc.Input)

			if tc.ExpectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.ExpectErr)
				return
			}

			require.NoError(t, err)
			got, err := json.Marshal(result)
			require.NoError(t, err)
			assert.JSONEq(t, string(tc.Expect), string(got))
		})
	}
}

func TestDecodeDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"range": "2-4"}
	decoder := NewDecoder(WithPreHook(splitRangePreHook))

	_, err := decoder.Decode(Context{Key: "local/Lamp"}, payload)
	require.NoError(t, err)
	assert.Equal(t, "2-4", payload["range"])
}

func TestDecodeJSONKeepsLargeIntegers(t *testing.T) {
	decoder := NewDecoder()

	group, err := decoder.DecodeJSON(Context{Key: "local/Counter"}, []byte(`{"ticks": 9007199254740993}`))
	require.NoError(t, err)

	ticks := group.Get("ticks")
	require.NotNil(t, ticks)
	assert.Equal(t, idprop.Int, ticks.Type())
	assert.Equal(t, 9007199254740993, ticks.Int())
}

func TestDecodeJSONAppliesDecoderConfig(t *testing.T) {
	configured := false
	decoder := NewDecoder(WithDecoderConfig(func(*json.Decoder) { configured = true }))

	_, err := decoder.DecodeJSON(Context{Key: "local/Lamp"}, []byte(`{"power": 60}`))
	require.NoError(t, err)
	assert.True(t, configured)

	_, err = decoder.DecodeJSON(Context{Key: "local/Lamp"}, []byte(`[1, 2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `hydrate: decode "local/Lamp"`)
}

func TestDecodeRejectsNilPayload(t *testing.T) {
	_, err := NewDecoder().Decode(Context{Key: "local/Lamp"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload is nil")
}

func TestPlainRestoresDecodedGroup(t *testing.T) {
	decoder := NewDecoder()
	input := map[string]any{
		"legs":     4,
		"height":   0.75,
		"label":    "oak",
		"material": map[string]any{RefKey: "Wood"},
		"size":     []any{1, 2},
		"meta":     map[string]any{"rev": 2},
		"slots":    []any{map[string]any{"kind": "a"}},
	}

	group, err := decoder.Decode(Context{Key: "local/Chair"}, input)
	require.NoError(t, err)

	plain := Plain(group)
	assert.Equal(t, 4, plain["legs"])
	assert.Equal(t, 0.75, plain["height"])
	assert.Equal(t, "oak", plain["label"])
	assert.Equal(t, map[string]any{RefKey: "Wood"}, plain["material"])
	assert.Equal(t, []int{1, 2}, plain["size"])
	assert.Equal(t, map[string]any{"rev": 2}, plain["meta"])
	assert.Equal(t, []any{map[string]any{"kind": "a"}}, plain["slots"])

	again, err := decoder.Decode(Context{Key: "local/Chair"}, plain)
	require.NoError(t, err)
	first, _ := json.Marshal(group)
	second, _ := json.Marshal(again)
	assert.JSONEq(t, string(first), string(second))
}

func buildOptions(tc fixtureCase) []DecoderOption {
	options := []DecoderOption{}

	for _, optName := range tc.Options {
		switch optName {
		case "single":
			options = append(options, WithSinglePrecision())
		case "strict":
			options = append(options, WithStrict())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "split_range":
			options = append(options, WithPreHook(splitRangePreHook))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "stamp_source":
			options = append(options, WithPostHook(stampSourcePostHook))
		}
	}

	if tc.CustomDecoder != "" {
		switch tc.CustomDecoder {
		case "raw_string":
			options = append(options, WithCustomDecoder(rawStringDecoder))
		}
	}

	return options
}

func splitRangePreHook(_ Context, payload map[string]any) (map[string]any, error) {
	value, ok := payload["range"].(string)
	if !ok || value == "" {
		return payload, nil
	}

	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid range payload %q", value)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, err
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}

	payload["range"] = map[string]any{"min": lo, "max": hi}
	return payload, nil
}

func stampSourcePostHook(ctx Context, group *idprop.Property) error {
	if group == nil {
		return errors.New("group is nil")
	}
	if group.Get("source") != nil {
		return nil
	}
	group.Add(idprop.NewString("source", ctx.Key))
	return nil
}

func rawStringDecoder(ctx Context, payload map[string]any) (*idprop.Property, error) {
	raw, ok := payload["raw"].(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("missing raw string for %q", ctx.Key)
	}
	group := idprop.NewGroup("raw")
	group.Add(idprop.NewString("raw", raw))
	return group, nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name          string          `json:"name"`
	Key           string          `json:"key"`
	Root          string          `json:"root"`
	Input         map[string]any  `json:"input"`
	Expect        json.RawMessage `json:"expect"`
	ExpectErr     string          `json:"expectErr"`
	PreHooks      []string        `json:"preHooks"`
	PostHooks     []string        `json:"postHooks"`
	Options       []string        `json:"options"`
	CustomDecoder string          `json:"customDecoder"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
