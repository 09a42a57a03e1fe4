package handler

import (
	"fmt"
	"strconv"
)

// Currency is appended to amounts.
const Currency = "💰"

func mention(userID int64) string {
	return "<@" + strconv.FormatInt(userID, 10) + ">"
}

func coins(amount int64) string {
	return fmt.Sprintf("**%d** %s", amount, Currency)
}

func signed(amount int64) string {
	if amount > 0 {
		return fmt.Sprintf("+%d", amount)
	}
	return strconv.FormatInt(amount, 10)
}
