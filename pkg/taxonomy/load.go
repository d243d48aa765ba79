package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// LoadBank reads a taxonomy from a YAML file, replacing the built-in bank.
//
// Expected format:
//
//	topics:
//	  - id: concurrency
//	    name: Concurrency & Parallelism
//	    keywords: [async, await, deadlock]
//	areas:
//	  - id: concurrency
//	    name: Concurrency & Parallelism
//	    keyConcepts: [async/await, locking]
//	    questions:
//	      - question: What is a deadlock?
//	        answer: A circular wait on locks.
//	        difficulty: mid
//	        tags: [locks]
//
// Difficulty accepts the same vocabulary as seniority hints; anything
// unrecognized lands on mid.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}

	var file struct {
		Topics []struct {
			ID       string   `yaml:"id"`
			Name     string   `yaml:"name"`
			Keywords []string `yaml:"keywords"`
		} `yaml:"topics"`
		Areas []struct {
			ID          string   `yaml:"id"`
			Name        string   `yaml:"name"`
			KeyConcepts []string `yaml:"keyConcepts"`
			Questions   []struct {
				Question   string   `yaml:"question"`
				Answer     string   `yaml:"answer"`
				Difficulty string   `yaml:"difficulty"`
				Tags       []string `yaml:"tags"`
			} `yaml:"questions"`
		} `yaml:"areas"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}

	topics := make([]Topic, 0, len(file.Topics))
	for _, t := range file.Topics {
		topics = append(topics, Topic{ID: t.ID, Name: t.Name, Keywords: t.Keywords})
	}

	areas := make([]TopicArea, 0, len(file.Areas))
	for _, a := range file.Areas {
		area := TopicArea{ID: a.ID, Name: a.Name, KeyConcepts: a.KeyConcepts}
		for _, q := range a.Questions {
			area.Questions = append(area.Questions, BankQuestion{
				Question:   q.Question,
				Answer:     q.Answer,
				Difficulty: question.ParseDifficulty(q.Difficulty),
				Tags:       q.Tags,
			})
		}
		areas = append(areas, area)
	}

	bank, err := NewBank(topics, areas)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return bank, nil
}
