package domain

// SolutionRecord описывает одну тему поддержки в каталоге.
type SolutionRecord struct {
	Category string   `yaml:"category"`
	Title    string   `yaml:"title"`
	Keywords []string `yaml:"keywords"`
	Solution string   `yaml:"solution"`
}
