package scoring

// Chef remarks for the critical rules.
const (
	CommentRaw   = "It's RAW! Did you even plug the toaster in?"
	CommentBurnt = "It's BURNT! I could build a house with this brick."
	CommentDry   = "Where's the butter? This is drier than a desert!"
)

type commentBand struct {
	min     int
	comment string
}

// commentBands are checked top to bottom; the first band whose minimum the
// rank reaches wins. Six bands cover every rank from 1 to 10.
var commentBands = []commentBand{
	{min: 10, comment: "Perfection. Absolute perfection. I have nothing to add."},
	{min: 9, comment: "Stunning toast. Golden, even, beautifully buttered."},
	{min: 7, comment: "Respectable work. You clearly know your way around a kitchen."},
	{min: 5, comment: "Edible. Not memorable, but edible."},
	{min: 3, comment: "Poor. My gran toasts better than this, and she's ninety."},
	{min: 0, comment: "A disaster from start to finish. Get out of my kitchen!"},
}

// BandComment returns the remark for a final rank when no critical rule
// applies.
func BandComment(score int) string {
	for _, b := range commentBands {
		if score >= b.min {
			return b.comment
		}
	}
	return commentBands[len(commentBands)-1].comment
}
