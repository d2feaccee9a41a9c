package tpc

import "testing"

func TestDetectSchema(t *testing.T) {
	cases := []struct {
		name string
		keys []string
		want SchemaKind
	}{
		{"frame trio", []string{"frame_raw_0", "channels_raw_0", "tickinfo_raw_0"}, SchemaFrame},
		{"frame only", []string{"frame_gauss_sig_12"}, SchemaFrame},
		{"tensor", []string{"tensor_0_0_array"}, SchemaTensor},
		{"tensor with metadata", []string{"tensor_3_1_metadata.json", "tensor_3_1_array"}, SchemaTensor},
		{"tensor wins over frame", []string{"frame_raw_0", "tensor_0_0_array"}, SchemaTensor},
		{"empty", nil, SchemaUnknown},
		{"junk", []string{"foo", "bar_1", "frames_raw_0"}, SchemaUnknown},
		{"tensor-ish but not", []string{"tensor_x_0_array", "tensor_0_0_arrays"}, SchemaUnknown},
		{"frame needs tag and index", []string{"frame_0", "frame_raw_"}, SchemaUnknown},
	}
	for _, tc := range cases {
		if got := DetectSchema(tc.keys); got != tc.want {
			t.Errorf("%s: DetectSchema = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseFrameKeyGreedyTag(t *testing.T) {
	cases := []struct {
		key   string
		tag   string
		event int
		ok    bool
	}{
		{"frame_raw_0", "raw", 0, true},
		{"frame_gauss_sig_12", "gauss_sig", 12, true},
		{"frame_a_b_c_007", "a_b_c", 7, true},
		{"frame_raw_", "", 0, false},
		{"frame_0", "", 0, false},
		{"frame_raw_x1", "", 0, false},
		{"frame_raw_-1", "", 0, false},
		{"channels_raw_0", "", 0, false},
	}
	for _, tc := range cases {
		tag, event, ok := parseFrameKey(tc.key, "frame")
		if ok != tc.ok || tag != tc.tag || (ok && event != tc.event) {
			t.Errorf("parseFrameKey(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tc.key, tag, event, ok, tc.tag, tc.event, tc.ok)
		}
	}
}

func TestParseTensorArrayKey(t *testing.T) {
	event, plane, ok := parseTensorArrayKey("tensor_4_2_array")
	if !ok || event != 4 || plane != 2 {
		t.Fatalf("parseTensorArrayKey = (%d, %d, %v)", event, plane, ok)
	}
	if _, _, ok := parseTensorArrayKey("tensor_4_2_metadata.json"); ok {
		t.Fatal("metadata key should not parse as an array key")
	}
}

func TestSchemaKindString(t *testing.T) {
	if SchemaFrame.String() != "frame" || SchemaTensor.String() != "tensor" || SchemaUnknown.String() != "unknown" {
		t.Fatal("SchemaKind string labels changed")
	}
}
