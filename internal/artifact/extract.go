package artifact

import (
	"strings"
)

// cppFenceLanguages are the fence info strings that mark C++ source.
var cppFenceLanguages = map[string]bool{
	"cpp": true,
	"c++": true,
	"cc":  true,
	"cxx": true,
	"h":   true,
	"hpp": true,
}

// fence is one complete Markdown code block.
type fence struct {
	lang string
	body []string
}

// ExtractCode returns the code of the Markdown code fence in text that most
// likely holds the test file, or the text itself when it contains no complete
// fence. Generation services commonly wrap code in ```cpp ... ``` and
// surround it with prose or build snippets; only the C++ is compilable.
//
// Selection order: the first fence tagged with a C++ language, else the
// largest fence, else the first. A trailing newline is guaranteed on
// extracted code. A <think>...</think> preamble, emitted by some reasoning
// models, is dropped before searching.
func ExtractCode(text string) string {
	content := strings.ReplaceAll(text, "\r\n", "\n")
	if end := strings.Index(content, "</think>"); end != -1 && strings.Contains(content[:end], "<think>") {
		content = content[end+len("</think>"):]
	}

	fences := scanFences(strings.Split(content, "\n"))
	if len(fences) == 0 {
		return strings.TrimLeft(content, "\n")
	}

	code := strings.Join(pickFence(fences).body, "\n")
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return code
}

// scanFences returns every complete fence in lines. An opening fence with no
// closing line ends the scan.
func scanFences(lines []string) []fence {
	var fences []fence
	for i := 0; i < len(lines); i++ {
		open := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(open, "```") {
			continue
		}
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "```" {
				end = j
				break
			}
		}
		if end == -1 {
			break
		}
		lang := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(open, "```")))
		if f := strings.Fields(lang); len(f) > 0 {
			lang = f[0]
		}
		fences = append(fences, fence{lang: lang, body: lines[i+1 : end]})
		i = end
	}
	return fences
}

func pickFence(fences []fence) fence {
	for _, f := range fences {
		if cppFenceLanguages[f.lang] {
			return f
		}
	}
	best := fences[0]
	for _, f := range fences[1:] {
		if size(f) > size(best) {
			best = f
		}
	}
	return best
}

func size(f fence) int {
	n := 0
	for _, line := range f.body {
		n += len(line) + 1
	}
	return n
}
