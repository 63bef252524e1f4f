// Package prompts holds the LLM prompt templates, embedded as JSON files that
// map a key to a text/template body.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.json
var promptFiles embed.FS

type prompt struct {
	text string
	tmpl *template.Template
}

var (
	loadOnce sync.Once
	library  map[string]prompt
	loadErr  error
)

// load parses every embedded prompt file once. Templates are named
// "<file>/<key>".
func load() (map[string]prompt, error) {
	loadOnce.Do(func() {
		names, err := fs.Glob(promptFiles, "*.json")
		if err != nil {
			loadErr = err
			return
		}
		lib := make(map[string]prompt)
		for _, name := range names {
			data, err := promptFiles.ReadFile(name)
			if err != nil {
				loadErr = fmt.Errorf("failed to read prompt file %s: %w", name, err)
				return
			}
			var raw map[string]string
			if err := json.Unmarshal(data, &raw); err != nil {
				loadErr = fmt.Errorf("failed to parse prompt file %s: %w", name, err)
				return
			}
			for key, body := range raw {
				t, err := template.New(name + "/" + key).Option("missingkey=error").Parse(body)
				if err != nil {
					loadErr = fmt.Errorf("failed to parse prompt %s/%s: %w", name, key, err)
					return
				}
				lib[t.Name()] = prompt{text: body, tmpl: t}
			}
		}
		library = lib
	})
	return library, loadErr
}

func lookup(filename, key string) (prompt, error) {
	lib, err := load()
	if err != nil {
		return prompt{}, err
	}
	p, ok := lib[filename+"/"+key]
	if !ok {
		if !hasFile(lib, filename) {
			return prompt{}, fmt.Errorf("prompt file %s not found", filename)
		}
		return prompt{}, fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return p, nil
}

func hasFile(lib map[string]prompt, filename string) bool {
	for name := range lib {
		if strings.HasPrefix(name, filename+"/") {
			return true
		}
	}
	return false
}

// Get returns the unrendered template text of a prompt.
func Get(filename, key string) (string, error) {
	p, err := lookup(filename, key)
	if err != nil {
		return "", err
	}
	return p.text, nil
}

// Render fills a prompt's {{.Name}} placeholders from data. Every placeholder
// must have a value.
func Render(filename, key string, data map[string]string) (string, error) {
	p, err := lookup(filename, key)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := p.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s/%s: %w", filename, key, err)
	}
	return b.String(), nil
}

// Keys returns the prompt keys in a file, sorted.
func Keys(filename string) ([]string, error) {
	lib, err := load()
	if err != nil {
		return nil, err
	}
	var keys []string
	for name := range lib {
		if key, ok := strings.CutPrefix(name, filename+"/"); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("prompt file %s not found", filename)
	}
	sort.Strings(keys)
	return keys, nil
}
