package serializer

import (
	"errors"
	"reflect"
	"testing"
)

type testPerson struct {
	Name    string            `json:"name" yaml:"name"`
	Age     int               `json:"age" yaml:"age"`
	Tags    []string          `json:"tags" yaml:"tags,omitempty"`
	Address *testAddress      `json:"address" yaml:"address,omitempty"`
	Meta    map[string]string `json:"meta" yaml:"meta,omitempty"`
}

type testAddress struct {
	Street string `json:"street" yaml:"street"`
	City   string `json:"city" yaml:"city"`
}

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() ISerializer[testPerson]{
	"JSON": NewJSONSerializer[testPerson],
	"YAML": NewYAMLSerializer[testPerson],
	"GOB":  NewGOBSerializer[testPerson],
}

// testValues creates a set of values with different fields filled
func testValues() []testPerson {
	return []testPerson{
		// minimal value
		{Name: "Ada"},

		// nested struct
		{
			Name:    "Grace",
			Age:     85,
			Address: &testAddress{Street: "Main Street 1", City: "Arlington"},
		},

		// all fields filled
		{
			Name:    "Linus Ümlaut 日本",
			Age:     54,
			Tags:    []string{"kernel", "git"},
			Address: &testAddress{Street: "Line\nBreak", City: "Portland"},
			Meta:    map[string]string{"key": "value", "quote": "\"'"},
		},
	}
}

// TestSerializerRoundTrip tests that values can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	values := testValues()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, value := range values {
				data, err := serializer.Serialize(value)
				if err != nil {
					t.Errorf("Failed to serialize value %d: %v", i, err)
					continue
				}

				result, err := serializer.Deserialize(data)
				if err != nil {
					t.Errorf("Failed to deserialize value %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(value, result) {
					t.Errorf("Value %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, value, result)
				}
			}
		})
	}
}

// TestMalformedInput tests that garbage is reported as an error
func TestMalformedInput(t *testing.T) {
	inputs := map[string]string{
		"JSON": "{\"name\": ",
		"YAML": "name: [unclosed",
		"GOB":  "",
	}

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			result, err := serializer.Deserialize(inputs[name])
			if err == nil {
				t.Errorf("Expected error for malformed input, got %+v", result)
			}
			if !reflect.DeepEqual(result, testPerson{}) {
				t.Errorf("Expected zero value on error, got %+v", result)
			}
		})
	}
}

func TestPrimitiveTypes(t *testing.T) {
	for name, factory := range map[string]func() ISerializer[int]{
		"JSON": NewJSONSerializer[int],
		"YAML": NewYAMLSerializer[int],
		"GOB":  NewGOBSerializer[int],
	} {
		t.Run(name, func(t *testing.T) {
			serializer := factory()
			for _, value := range []int{0, 1, -42, 1 << 40} {
				data, err := serializer.Serialize(value)
				if err != nil {
					t.Fatalf("Failed to serialize %d: %v", value, err)
				}
				result, err := serializer.Deserialize(data)
				if err != nil {
					t.Fatalf("Failed to deserialize %d: %v", value, err)
				}
				if result != value {
					t.Errorf("Expected %d, got %d", value, result)
				}
			}
		})
	}
}

func TestStringSerializer(t *testing.T) {
	serializer := NewStringSerializer()

	for _, value := range []string{"", "plain", "{\"not\": \"parsed\"}", "\x00binary\xff"} {
		data, err := serializer.Serialize(value)
		if err != nil || data != value {
			t.Errorf("Expected identity, got %q (err=%v)", data, err)
		}
		result, err := serializer.Deserialize(data)
		if err != nil || result != value {
			t.Errorf("Expected identity, got %q (err=%v)", result, err)
		}
	}
}

func TestJSONIsReadable(t *testing.T) {
	data, err := NewJSONSerializer[testPerson]().Serialize(testPerson{Name: "Ada", Age: 36})
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"name":"Ada","age":36,"tags":null,"address":null,"meta":null}`
	if data != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}

// TestInvalidUTF8 checks that no serializer silently rewrites invalid utf-8
func TestInvalidUTF8(t *testing.T) {
	for name, factory := range map[string]func() ISerializer[string]{
		"JSON": NewJSONSerializer[string],
		"YAML": NewYAMLSerializer[string],
		"GOB":  NewGOBSerializer[string],
	} {
		t.Run(name, func(t *testing.T) {
			serializer := factory()
			value := "a\xffb"

			data, err := serializer.Serialize(value)
			if err != nil {
				if !errors.Is(err, ErrInvalidUTF8) {
					t.Errorf("Expected ErrInvalidUTF8, got %v", err)
				}
				return
			}
			result, err := serializer.Deserialize(data)
			if err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if result != value {
				t.Errorf("Expected lossless round trip of %q, got %q", value, result)
			}
		})
	}

	t.Run("JSONRejects", func(t *testing.T) {
		tests := map[string]testPerson{
			"Field":    {Name: "a\xffb"},
			"Slice":    {Name: "ok", Tags: []string{"fine", "\xc3\x28"}},
			"Pointer":  {Name: "ok", Address: &testAddress{City: "\xff"}},
			"MapKey":   {Name: "ok", Meta: map[string]string{"\xff": "v"}},
			"MapValue": {Name: "ok", Meta: map[string]string{"k": "\xff"}},
		}
		serializer := NewJSONSerializer[testPerson]()
		for name, value := range tests {
			if _, err := serializer.Serialize(value); !errors.Is(err, ErrInvalidUTF8) {
				t.Errorf("%s: expected ErrInvalidUTF8, got %v", name, err)
			}
		}

		// valid unicode and raw bytes are fine
		if _, err := serializer.Serialize(testValues()[2]); err != nil {
			t.Errorf("Expected valid value to serialize, got %v", err)
		}
		if _, err := NewJSONSerializer[[]byte]().Serialize([]byte{0xff, 0x00}); err != nil {
			t.Errorf("Expected byte slice to serialize, got %v", err)
		}
	})
}
