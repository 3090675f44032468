package globe

import "testing"

func TestDefaultSceneOptions(t *testing.T) {
	o := defaultSceneOptions()
	if o.pickRegionSize != DefaultPickRegionSize {
		t.Errorf("pickRegionSize = %d, want %d", o.pickRegionSize, DefaultPickRegionSize)
	}
	if o.depthSorted {
		t.Error("depthSorted = true, want false")
	}
}

func TestSceneOptionsApply(t *testing.T) {
	tests := []struct {
		name       string
		opts       []SceneOption
		wantRegion int
		wantSorted bool
	}{
		{"none", nil, DefaultPickRegionSize, false},
		{"region", []SceneOption{WithPickRegionSize(9)}, 9, false},
		{"zero region", []SceneOption{WithPickRegionSize(0)}, 1, false},
		{"sorted", []SceneOption{WithDepthSorted(true)}, DefaultPickRegionSize, true},
		{"last wins", []SceneOption{WithDepthSorted(true), WithDepthSorted(false), WithPickRegionSize(4)}, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultSceneOptions()
			for _, opt := range tt.opts {
				opt(&o)
			}
			if o.pickRegionSize != tt.wantRegion {
				t.Errorf("pickRegionSize = %d, want %d", o.pickRegionSize, tt.wantRegion)
			}
			if o.depthSorted != tt.wantSorted {
				t.Errorf("depthSorted = %v, want %v", o.depthSorted, tt.wantSorted)
			}
		})
	}
}
