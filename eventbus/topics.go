package eventbus

var (
	TopicRoastEvents = NewTopic("roast-board.roast.events")
)

var AllTopics = []Topic{
	TopicRoastEvents,
}
