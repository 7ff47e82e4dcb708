// Package host provides the collaborators that surround the expression
// engine in a running title renderer.
//
//   - [Cache] memoizes compiled expressions by source text.
//   - [Renderer] serializes evaluation onto a single worker and drops
//     queued jobs that a newer submission supersedes.
//   - [Vars] holds the variables titles are rendered against. Values come
//     from YAML files, KEY=VALUE assignments, and computed expr-lang
//     definitions.
//   - [Runner] implements [lang.ExecEvaluator] by running shell commands
//     and refreshing their output on a schedule.
//   - [DirWorkspace] implements [lang.WorkspaceResolver] for source
//     checkouts identified by a marker directory such as ".git".
//
// A typical wiring:
//
//	runner, _ := host.NewRunner()
//	defer runner.Close()
//
//	vars := host.NewVars()
//	_ = vars.LoadFile(ctx, "vars.yaml")
//
//	cache := host.NewCache(64, "default",
//		lang.WithExec(runner), lang.WithWorkspace(host.DirWorkspace{}))
//
//	r := host.NewRenderer(cache, vars)
//	defer r.Close()
//
//	title, err := r.Render(ctx, `doc_name + " - " + wsname(doc_path)`)
package host
