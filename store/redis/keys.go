package redis

import "fmt"

// Key prefix for all chopsticks data
const keyPrefix = "chopsticks"

// savesKey is the hash holding every snapshot, field = save id
func savesKey() string {
	return fmt.Sprintf("%s:saves", keyPrefix)
}
