package splice

import "testing"

func TestInline(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		prefix string
		want   string
	}{
		{
			name:  "strips declaration and doctype",
			input: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<!DOCTYPE svg PUBLIC \"-//W3C//DTD SVG 1.1//EN\" \"x\">\n<svg>\n  <g/>\n</svg>\n",
			want:  "<svg><g/></svg>",
		},
		{
			name:  "joins lines in text",
			input: "<svg><style>\n.a{}\n\n\n.b{}\r\n</style><text>two\n  words</text></svg>",
			want:  "<svg><style> .a{} .b{} </style><text>two words</text></svg>",
		},
		{
			name:   "prefixes ids and references",
			input:  `<svg><defs><marker id="arrow"/></defs><path marker-end="url(#arrow)"/><use href="#arrow"/><a href="#other"/></svg>`,
			prefix: "ch_0",
			want:   `<svg><defs><marker id="ch_0-arrow"/></defs><path marker-end="url(#ch_0-arrow)"/><use href="#ch_0-arrow"/><a href="#other"/></svg>`,
		},
		{
			name:   "xlink href",
			input:  `<svg><g id="n1"/><use xlink:href="#n1"/></svg>`,
			prefix: "p",
			want:   `<svg><g id="p-n1"/><use xlink:href="#p-n1"/></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Inline(tt.input, tt.prefix); got != tt.want {
				t.Errorf("Inline() = %q, want %q", got, tt.want)
			}
		})
	}
}
