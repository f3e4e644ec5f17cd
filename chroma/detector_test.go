package chroma_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tasmanium/reportview/chroma"
)

func TestDetector_DetectFromPath(t *testing.T) {
	t.Parallel()

	t.Run("detects common attachment formats", func(t *testing.T) {
		t.Parallel()

		detector := chroma.NewDetector()

		cases := []struct {
			path string
			want string
		}{
			{"r1/st1/response.json", "JSON"},
			{"r1/st1/page.html", "HTML"},
			{"r1/st1/payload.xml", "XML"},
			{"r1/st1/config.yaml", "YAML"},
			{"r1/st1/query.py", "Python"},
		}

		for _, tc := range cases {
			assert.Equal(t, tc.want, detector.DetectFromPath(tc.path), "path: %s", tc.path)
		}
	})

	t.Run("returns empty string for unknown extensions", func(t *testing.T) {
		t.Parallel()

		detector := chroma.NewDetector()

		assert.Empty(t, detector.DetectFromPath("r1/file.unknownext"))
	})
}
