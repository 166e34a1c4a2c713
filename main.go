package main

import "quizbot/app/cmd"

func main() {
	cmd.Execute()
}
