// Package templates provides starter manifests for rrbuilder init.
//
// # Available Templates
//
//   - minimal: a root layout with an index and one page
//   - blog: nested posts with a dynamic segment and an api prefix
//   - dashboard: a pathless layout around a nested dashboard section
//
// # Usage
//
//	tmpl, err := templates.Get("blog")
//	if err != nil {
//	    return err
//	}
//	written, err := tmpl.Create(dir, templates.Config{Name: "web"}, false)
//
// # Template Variables
//
//	{{.Name}}      - project name, used in comments
//	{{.Dir}}       - component directory (default "routes")
//	{{.Extension}} - component file extension (default ".tsx")
package templates
