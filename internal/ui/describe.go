package ui

import (
	"fmt"
	"strings"
)

// DescribeTool summarises a tool call in one line for the transcript.
func DescribeTool(name string, args map[string]string) string {
	switch name {
	case "run_bash_cmd":
		if cmd, ok := args["command"]; ok {
			return fmt.Sprintf("bash '%s'", firstLine(cmd))
		}
	case "replace_in_file":
		return fmt.Sprintf("edit %s:%s-%s", args["file_path"], args["from_line"], args["to_line"])
	case "show_file", "show_diff", "check_syntax":
		if p, ok := args["file_path"]; ok {
			return fmt.Sprintf("%s %s", name, p)
		}
	case "run_test":
		target := args["test_path"]
		if target == "" {
			target = args["test_name"]
		}
		if target == "" {
			target = "."
		}
		return "pytest " + target
	case "grep":
		return fmt.Sprintf("grep '%s'", args["pattern"])
	case "find_files":
		return fmt.Sprintf("find '%s'", args["name_pattern"])
	case "finish":
		return "finish"
	}
	return name
}

func firstLine(s string) string {
	line, _, more := strings.Cut(s, "\n")
	if more {
		return line + " …"
	}
	return line
}
