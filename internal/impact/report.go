package impact

// Achievement is a milestone badge shown on impact reports.
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Achievements returns the badges a user has earned from their cumulative
// activity.
func Achievements(totalDonations int, mealsProvided int, carbonSavedKg float64) []Achievement {
	var out []Achievement

	if totalDonations >= 10 {
		out = append(out, Achievement{
			Title:       "Food Hero",
			Description: "Completed 10+ donations",
		})
	}
	if mealsProvided >= 100 {
		out = append(out, Achievement{
			Title:       "Hunger Fighter",
			Description: "Provided 100+ meals",
		})
	}
	if carbonSavedKg >= 50 {
		out = append(out, Achievement{
			Title:       "Eco Warrior",
			Description: "Saved 50+ kg CO2",
		})
	}

	return out
}

// Recommendations returns role-specific suggestions appended to impact
// reports.
func Recommendations(role string) []string {
	switch role {
	case "donor":
		return []string{
			"Consider donating during off-peak hours for faster pickup",
			"Add more detailed descriptions to help NGOs better assess donations",
		}
	case "ngo":
		return []string{
			"Expand your serving areas to reach more donors",
			"Update your capacity regularly for better matching",
		}
	case "volunteer":
		return []string{
			"Consider upgrading to a larger vehicle for more efficient pickups",
			"Update your availability to get more assignments",
		}
	default:
		return nil
	}
}
