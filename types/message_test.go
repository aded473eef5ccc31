package types //nolint:revive // types is a valid package name

import "testing"

func TestMessage_IsDiagnostic(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"DATA16", true},
		{"DATA96", true},
		{"DATA", true},
		{"ATTITUDE", false},
		{"PARAM_VALUE", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			m := &Message{Type: tt.typ}
			if got := m.IsDiagnostic(); got != tt.want {
				t.Errorf("IsDiagnostic(%q) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestMessage_FloatAcceptsIntegerEncodings(t *testing.T) {
	m := &Message{Fields: map[string]any{
		"a": int8(-3),
		"b": uint16(7),
		"c": float32(1.5),
		"d": "nope",
	}}

	if v, ok := m.Float("a"); !ok || v != -3 {
		t.Errorf("Float(a) = %v, %v", v, ok)
	}
	if v, ok := m.Float("b"); !ok || v != 7 {
		t.Errorf("Float(b) = %v, %v", v, ok)
	}
	if v, ok := m.Float("c"); !ok || v != 1.5 {
		t.Errorf("Float(c) = %v, %v", v, ok)
	}
	if _, ok := m.Float("d"); ok {
		t.Error("Float(d) should fail for string field")
	}
	if _, ok := m.Float("missing"); ok {
		t.Error("Float(missing) should fail")
	}
}

func TestParamValueFrom(t *testing.T) {
	m := &Message{
		Type:   MsgParamValue,
		Fields: map[string]any{"param_id": "SR1_EXTRA1\x00\x00", "param_value": 3.0},
	}
	pv, err := ParamValueFrom(m)
	if err != nil {
		t.Fatalf("ParamValueFrom: %v", err)
	}
	if pv.ID != "SR1_EXTRA1" {
		t.Errorf("ID = %q, want SR1_EXTRA1", pv.ID)
	}
	if pv.Value != 3.0 {
		t.Errorf("Value = %v, want 3", pv.Value)
	}
	if pv.Message != m {
		t.Error("Message should reference the source message")
	}
}

func TestParamValueFrom_Rejects(t *testing.T) {
	cases := map[string]*Message{
		"wrong type": {Type: MsgAttitude, Fields: map[string]any{"param_id": "X"}},
		"no id":      {Type: MsgParamValue, Fields: map[string]any{}},
		"empty id":   {Type: MsgParamValue, Fields: map[string]any{"param_id": "\x00"}},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParamValueFrom(m); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestImageFormat_Extension(t *testing.T) {
	if ImageFormatPGM.Extension() != ".pgm" {
		t.Errorf("pgm extension = %q", ImageFormatPGM.Extension())
	}
	if ImageFormatJPEG.Extension() != ".jpg" {
		t.Errorf("jpeg extension = %q", ImageFormatJPEG.Extension())
	}
	if ImageFormat("png").Valid() {
		t.Error("png should not be valid")
	}
}
