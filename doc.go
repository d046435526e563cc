/*
Package automate is a chat assistant that turns typed requests into automation.

A user either types a natural-language request, which an agent answers step by
step in the background, or a slash command that runs one of the registered
actions directly. Every exchange is appended to a conversation transcript.

# Concept

The core is an action execution model. Actions are small units with declared
inputs: a loop that repeats nested actions until a stop condition over an
external output mapping holds, and an action that launches an application.
Agent requests run on worker tasks that stream each intermediate result to the
conversation as soon as it is produced.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/automate"
	)

	func main() {
		a, err := automate.New()
		if err != nil {
			log.Fatal(err)
		}
		defer a.Close()

		ctx := context.Background()
		if _, err := a.HandleInput(ctx, "/notify text=hello"); err != nil {
			log.Fatal(err)
		}
		a.Wait()

		for _, msg := range a.Transcript().Messages() {
			fmt.Println(msg.Role, msg.Text)
		}
	}

# Stop Conditions

Loop stop conditions are boolean expressions evaluated against the output
mapping only. They support comparisons, arithmetic, && || ! and the Python
spellings and/or/not/True/False/None. Function calls are not available.
*/
package automate
