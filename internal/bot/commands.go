package bot

import "github.com/bwmarrin/discordgo"

var (
	minOne = 1.0
	noDM   = false
)

func intOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
		MinValue:    &minOne,
	}
}

func strOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func userOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func boolOpt(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        name,
		Description: description,
	}
}

func command(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:         name,
		Description:  description,
		Options:      options,
		DMPermission: &noDM,
	}
}

// Commands returns the slash commands the bot registers.
// Required options come first, Discord rejects them after optional ones.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		command("help", "List the bot's commands"),

		// Economy
		command("balance", "Show a balance",
			userOpt("user", "Whose balance (default: yours)", false)),
		command("pay", "Send coins to another member",
			userOpt("user", "Recipient", true),
			intOpt("amount", "Amount to send", true)),
		command("top", "Richest members of this server"),
		command("give", "Admin: add coins to a member",
			userOpt("user", "Member", true),
			intOpt("amount", "Amount to add", true)),
		command("remove", "Admin: take coins from a member",
			userOpt("user", "Member", true),
			intOpt("amount", "Amount to take", true)),

		// Shop
		command("shop", "Browse the shop"),
		command("inventory", "Show your items"),
		command("buy", "Buy an item",
			intOpt("item_id", "Item number from /shop", true),
			intOpt("quantity", "How many (default 1)", false)),
		command("create_item", "Admin: add an item to the shop",
			strOpt("name", "Item name", true),
			intOpt("price", "Price in coins", true),
			strOpt("description", "Description", false),
			boolOpt("one_time", "Each member may buy it only once")),
		command("create_role_item", "Admin: sell a role in the shop",
			strOpt("name", "Item name", true),
			intOpt("price", "Price in coins", true),
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role granted on purchase",
				Required:    true,
			},
			strOpt("description", "Description", false),
			boolOpt("one_time", "Each member may buy it only once")),
		command("delete_item", "Admin: remove an item from the shop and every inventory",
			intOpt("item_id", "Item number", true)),
		command("give_item", "Admin: give an item for free",
			userOpt("user", "Member", true),
			intOpt("item_id", "Item number", true),
			intOpt("quantity", "How many (default 1)", false)),
		command("remove_item", "Admin: take an item away",
			userOpt("user", "Member", true),
			intOpt("item_id", "Item number", true),
			intOpt("quantity", "How many (default 1)", false)),

		// Promo codes
		command("promo", "Redeem a promo code",
			strOpt("code", "The code", true)),
		command("create_promo", "Admin: create a promo code",
			strOpt("code", "The code", true),
			intOpt("reward", "Coins granted", true),
			strOpt("expires", "Expiry in UTC, YYYY-MM-DD HH:MM", false),
			intOpt("max_uses", "Total redemptions allowed", false)),
		command("delete_promo", "Admin: delete a promo code",
			strOpt("code", "The code", true)),
		command("list_promos", "Admin: list promo codes"),

		// Events
		command("events", "Show events open for betting",
			intOpt("event_id", "Show one event in detail", false)),
		command("bet", "Bet on an event",
			intOpt("event_id", "Event number", true),
			strOpt("option", "Option key as shown in /events", true),
			intOpt("amount", "Stake", true)),
		command("create_match", "Admin: open a match event",
			strOpt("team1", "First team", true),
			strOpt("coeff1", "First team coefficient, e.g. 1.85", true),
			strOpt("team2", "Second team", true),
			strOpt("coeff2", "Second team coefficient", true),
			strOpt("roster1", "First team roster", false),
			strOpt("roster2", "Second team roster", false)),
		command("create_mvp", "Admin: open an MVP event",
			strOpt("title", "Event title", true),
			strOpt("options", "Candidates as Name:coeff, Name:coeff", true)),
		command("create_total", "Admin: open an over/under event",
			strOpt("description", "What is counted", true),
			strOpt("coeff_over", "Over coefficient", true),
			strOpt("coeff_under", "Under coefficient", true)),
		command("lock", "Admin: close betting on an event",
			intOpt("event_id", "Event number", true)),
		command("unlock", "Admin: reopen betting on an event",
			intOpt("event_id", "Event number", true)),
		command("settle", "Admin: pay out an event and close it",
			intOpt("event_id", "Event number", true),
			strOpt("winner", "Winning option key", true)),

		// Games
		command("slots", "Spin the slot machine",
			intOpt("bet", "Stake", true)),
		command("roulette", "Spin the roulette wheel",
			intOpt("bet", "Stake", true),
			strOpt("choice", "red, black, even, odd or a number 0-36", true)),
		command("bombs", "Find the crystals, avoid the bombs",
			intOpt("bet", "Stake", true),
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "bombs",
				Description: "Number of bombs, 1-8 (default 3)",
				MinValue:    &minOne,
				MaxValue:    8,
			}),
	}
}
