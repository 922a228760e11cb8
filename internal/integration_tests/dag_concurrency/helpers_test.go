package dag_concurrency

const header = `
project {
  name    = "Concurrency"
  version = "0.0.1"
}

directories {
  src  = "src"
  dist = "dist"
}
`

func buildFile(tasks string) map[string]string {
	return map[string]string{"build.hcl": header + tasks}
}
