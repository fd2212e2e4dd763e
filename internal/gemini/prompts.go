package gemini

// DescribeImagePrompt is sent with each photo to obtain the description fed
// into caption generation.
const DescribeImagePrompt = `Describe this bakery item in detail. What is it? How does it look? What ingredients might be in it? Is it a bread, pastry, or dessert? Describe textures and visual appeal.`
