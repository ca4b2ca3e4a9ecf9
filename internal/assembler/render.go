package assembler

import (
	"bytes"
	"fmt"
)

// headerContent is everything that goes into one header file.
type headerContent struct {
	entryIncludes []string
	variables     []string
	prototypes    []string
	isEntry       bool
}

func renderPlaceholderHeader() []byte {
	return []byte("#pragma once\n")
}

func renderHeader(h headerContent) []byte {
	var b bytes.Buffer

	b.WriteString("#pragma once\n\n")

	if h.isEntry {
		for _, inc := range h.entryIncludes {
			fmt.Fprintf(&b, "#include \"%s\"\n", inc)
		}
		if len(h.entryIncludes) > 0 {
			b.WriteString("\n")
		}

		b.WriteString("#pragma region Variables\n\n")
		for _, v := range h.variables {
			fmt.Fprintf(&b, "extern %s;\n", v)
		}
		b.WriteString("\n#pragma endregion\n")
	}

	b.WriteString("\n#pragma region Functions\n\n")
	for _, p := range h.prototypes {
		b.WriteString(p)
		b.WriteString("\n")
	}
	b.WriteString("\n#pragma endregion\n")

	return b.Bytes()
}

func renderSource(includes []string, lines []string) []byte {
	var b bytes.Buffer

	for _, inc := range includes {
		fmt.Fprintf(&b, "#include \"%s\"\n", inc)
	}
	if len(includes) > 0 {
		b.WriteString("\n")
	}

	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.Bytes()
}

// renderHeaderOnly renders a bucket whose file id is itself a header.
func renderHeaderOnly(lines []string) []byte {
	return append([]byte("#pragma once\n\n"), renderSource(nil, lines)...)
}
