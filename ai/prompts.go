package ai

// MapInstructions asks for a summary of a single chunk of source material.
const MapInstructions = `Write a concise summary of the following excerpt from a software repository.
Describe what the code or text does, naming the important modules, functions and
configuration it mentions. Do not invent details that are not present.`

// CombineInstructions asks for one summary merging several partial summaries.
const CombineInstructions = `The following are summaries of different parts of the same software repository.
Combine them into a single concise summary of the whole repository: its purpose,
its main components and how they fit together. Remove repetition and keep the most
important details.`
