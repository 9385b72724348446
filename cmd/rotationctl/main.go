// Command rotationctl runs the rotation engine and the schedule exports
// against local JSON files, without a server or database.
package main

func main() {
	Execute()
}
