package javascript

import (
	"slices"
	"testing"
)

func TestExtractFromPatch(t *testing.T) {
	tests := []struct {
		name  string
		patch string
		want  []string
	}{
		{
			name: "added dependencies",
			patch: `@@ -5,6 +5,8 @@
   "dependencies": {
+    "left-pad": "^1.3.0",
+    "@scope/x": "1.0.0",
     "lodash": "^4.17.21"
-    "request": "^2.88.0"
   }`,
			want: []string{"left-pad"},
		},
		{
			name:  "two space indentation missed",
			patch: "+  \"chalk\": \"^5.0.0\",",
			want:  nil,
		},
		{
			name:  "top-level keys with four spaces are picked up",
			patch: "+    \"version\": \"2.0.0\",",
			want:  []string{"version"},
		},
		{
			name:  "empty name dropped",
			patch: "+    \"\": \"1.0.0\"",
			want:  nil,
		},
		{
			name:  "deeper indentation is missed",
			patch: "+      \"nested-dep\": \"^1\"",
			want:  nil,
		},
		{
			name:  "duplicates kept in order",
			patch: "+    \"b\": \"1\"\n+    \"a\": \"1\"\n+    \"b\": \"2\"",
			want:  []string{"b", "a", "b"},
		},
		{
			name:  "trailing whitespace ignored",
			patch: "+    \"debug\": \"^4\",   ",
			want:  []string{"debug"},
		},
		{
			name:  "missing colon after quote",
			patch: "+    \"scripts\" : {",
			want:  nil,
		},
		{
			name:  "hunk header and file markers",
			patch: "+++ b/package.json\n@@ -1 +1 @@",
			want:  nil,
		},
		{
			name:  "empty patch",
			patch: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFromPatch(tt.patch)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ExtractFromPatch() = %q, want %q", got, tt.want)
			}
		})
	}
}
