package chunker

import (
	"errors"
	"testing"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name           string
		frame          int
		expectedChunk  int
		expectedOffset float64
	}{
		{
			name:           "first frame",
			frame:          1,
			expectedChunk:  0,
			expectedOffset: 0,
		},
		{
			name:           "mid first chunk",
			frame:          12,
			expectedChunk:  0,
			expectedOffset: 1.1, // 11 frames at 10fps
		},
		{
			name:           "last frame of first chunk",
			frame:          250,
			expectedChunk:  0,
			expectedOffset: 24.9,
		},
		{
			name:           "first frame of second chunk",
			frame:          251,
			expectedChunk:  1,
			expectedOffset: 0,
		},
		{
			name:           "deep into episode",
			frame:          10001,
			expectedChunk:  40,
			expectedOffset: 0,
		},
		{
			name:           "odd offset",
			frame:          1337,
			expectedChunk:  5,
			expectedOffset: 8.6, // (1336 % 250) / 10
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Locate(tt.frame)
			if err != nil {
				t.Fatalf("Locate(%d) unexpected error: %v", tt.frame, err)
			}
			if loc.Chunk != tt.expectedChunk {
				t.Errorf("Locate(%d).Chunk = %d, want %d", tt.frame, loc.Chunk, tt.expectedChunk)
			}
			if loc.Offset != tt.expectedOffset {
				t.Errorf("Locate(%d).Offset = %v, want %v", tt.frame, loc.Offset, tt.expectedOffset)
			}
		})
	}
}

func TestLocate_RejectsNonPositive(t *testing.T) {
	for _, frame := range []int{0, -1, -250} {
		if _, err := Locate(frame); !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("Locate(%d) error = %v, want ErrInvalidFrame", frame, err)
		}
	}
}

func TestLocate_ChunkBoundaries(t *testing.T) {
	prev := Location{Chunk: -1}
	for frame := 1; frame <= FramesPerChunk*3; frame++ {
		loc, err := Locate(frame)
		if err != nil {
			t.Fatalf("Locate(%d) unexpected error: %v", frame, err)
		}
		if (frame-1)%FramesPerChunk == 0 {
			if loc.Chunk != prev.Chunk+1 || loc.Offset != 0 {
				t.Fatalf("frame %d should open chunk %d at 0, got %+v", frame, prev.Chunk+1, loc)
			}
		} else if loc.Chunk != prev.Chunk || loc.Offset <= prev.Offset {
			t.Fatalf("frame %d went backwards: %+v after %+v", frame, loc, prev)
		}
		prev = loc
	}
}

func TestParseFrameRef(t *testing.T) {
	tests := []struct {
		name        string
		params      [4]string
		expectedErr error
		expected    FrameRef
	}{
		{
			name:     "valid",
			params:   [4]string{"seinfeld", "3", "12", "4021"},
			expected: FrameRef{Index: "seinfeld", Season: "3", Episode: "12", Frame: 4021},
		},
		{
			name:        "missing index",
			params:      [4]string{"", "3", "12", "4021"},
			expectedErr: ErrMissingParameters,
		},
		{
			name:        "missing frame",
			params:      [4]string{"seinfeld", "3", "12", ""},
			expectedErr: ErrMissingParameters,
		},
		{
			name:        "zero frame",
			params:      [4]string{"seinfeld", "3", "12", "0"},
			expectedErr: ErrInvalidFrame,
		},
		{
			name:        "not a number",
			params:      [4]string{"seinfeld", "3", "12", "abc"},
			expectedErr: ErrInvalidFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseFrameRef(tt.params[0], tt.params[1], tt.params[2], tt.params[3])
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("ParseFrameRef() error = %v, want %v", err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFrameRef() unexpected error: %v", err)
			}
			if ref != tt.expected {
				t.Errorf("ParseFrameRef() = %+v, want %+v", ref, tt.expected)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	key, err := ObjectKey(FrameRef{Index: "seinfeld", Season: "3", Episode: "12", Frame: 501})
	if err != nil {
		t.Fatalf("ObjectKey() unexpected error: %v", err)
	}
	if key != "protected/src/seinfeld/3/12/2.mp4" {
		t.Errorf("ObjectKey() = %q", key)
	}
}

func TestFormatOffset(t *testing.T) {
	tests := map[float64]string{
		0:    "0",
		1.1:  "1.1",
		24.9: "24.9",
		10:   "10",
	}
	for in, want := range tests {
		if got := FormatOffset(in); got != want {
			t.Errorf("FormatOffset(%v) = %q, want %q", in, got, want)
		}
	}
}
