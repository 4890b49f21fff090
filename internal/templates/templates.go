package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/vango-dev/rrbuilder/internal/config"
	"github.com/vango-dev/rrbuilder/internal/errors"
)

// Config contains template variables.
type Config struct {
	// Name is the project name.
	Name string

	// Dir is the directory component files live in, relative to the
	// manifest.
	Dir string

	// Extension is appended to every component file.
	Extension string
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "app"
	}
	if c.Dir == "" {
		c.Dir = "routes"
	}
	if c.Extension == "" {
		c.Extension = ".tsx"
	}
	return c
}

// Template is a starter manifest.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Manifest is the routes.yaml body.
	Manifest string
}

// Available templates.
var templates = map[string]*Template{
	"minimal":   minimalTemplate(),
	"blog":      blogTemplate(),
	"dashboard": dashboardTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("C145").
			WithDetail("Template '" + name + "' not found")
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes the manifest template.
func (t *Template) Render(cfg Config) ([]byte, error) {
	tmpl, err := template.New(t.Name).Parse(t.Manifest)
	if err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "invalid template %s: %v", t.Name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg.withDefaults()); err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "template execute error %s: %v", t.Name, err)
	}
	return buf.Bytes(), nil
}

// Create writes the rendered manifest to dir/routes.yaml. An existing
// manifest is kept unless overwrite is set; the returned path is empty in
// that case.
func (t *Template) Create(dir string, cfg Config, overwrite bool) (string, error) {
	data, err := t.Render(cfg)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, config.DefaultManifest)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.New("O001").WithDetail(dir).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.New("O001").WithDetail(path).Wrap(err)
	}
	return path, nil
}

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "A root layout with an index and one page",
		Manifest: `# {{.Name}} routes
routes:
  - layout: {{.Dir}}/root{{.Extension}}
    children:
      - index: {{.Dir}}/home{{.Extension}}
      - route: about
        file: {{.Dir}}/about{{.Extension}}
`,
	}
}

func blogTemplate() *Template {
	return &Template{
		Name:        "blog",
		Description: "Nested posts with a dynamic segment and an api prefix",
		Manifest: `# {{.Name}} routes
routes:
  - layout: {{.Dir}}/root{{.Extension}}
    children:
      - index: {{.Dir}}/home{{.Extension}}
      - route: about
        file: {{.Dir}}/about{{.Extension}}
      - route: posts
        file: {{.Dir}}/posts{{.Extension}}
        children:
          - index: {{.Dir}}/posts/index{{.Extension}}
          - route: ":postId"
            file: {{.Dir}}/posts/post{{.Extension}}
      - prefix: api
        children:
          - route: health
            file: {{.Dir}}/api/health{{.Extension}}
            id: api-health
`,
	}
}

func dashboardTemplate() *Template {
	return &Template{
		Name:        "dashboard",
		Description: "A pathless layout around a nested dashboard section",
		Manifest: `# {{.Name}} routes
routes:
  - layout: {{.Dir}}/root{{.Extension}}
    children:
      - index: {{.Dir}}/home{{.Extension}}
      - route: login
        file: {{.Dir}}/login{{.Extension}}
      - route: dashboard
        file: {{.Dir}}/dashboard/layout{{.Extension}}
        children:
          - index: {{.Dir}}/dashboard/index{{.Extension}}
          - route: settings
            file: {{.Dir}}/dashboard/settings{{.Extension}}
          - route: "users/:userId?"
            file: {{.Dir}}/dashboard/user{{.Extension}}
      - route: "*"
        file: {{.Dir}}/not-found{{.Extension}}
`,
	}
}
