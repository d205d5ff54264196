package engines

import "testing"

func TestRegistryFromConfig(t *testing.T) {
	cfg := RegistryConfig{
		Engines: map[string]EngineConfig{
			"google": {Type: GoogleFreeName, Enabled: true},
			"main": {
				Type:    LLMName,
				APIKey:  "k",
				BaseURL: "https://llm.example.com/v1",
				Model:   "test-model",
				Enabled: true,
			},
			"broken":   {Type: LLMName, Enabled: true}, // missing credential: skipped
			"disabled": {Type: GoogleFreeName},
			"weird":    {Type: "carrier-pigeon", Enabled: true},
		},
	}

	r := NewRegistryFromConfig(cfg, nil)

	got := r.List()
	want := []string{"google", "main"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	eng, err := r.Get("main")
	if err != nil {
		t.Fatalf("Get(main) error = %v", err)
	}
	if !eng.SupportsBatching() {
		t.Error("LLM engine should support batching")
	}

	google, _ := r.Get("google")
	if google.SupportsBatching() {
		t.Error("reference engine should not support batching")
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("Get(missing) should fail")
	}
}
