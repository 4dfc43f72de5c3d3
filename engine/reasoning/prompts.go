package reasoning

// queryParseSystem instructs the model to break a raw shopping query into
// structured fields.
const queryParseSystem = `You are a product-search query parser for Uzbekistan e-commerce.
Given the user's raw search query, extract structured fields.

Rules:
- product_name: the canonical product name (e.g. "Samsung Galaxy A33 5G")
- brand: manufacturer name if identifiable, else an empty string
- model: model identifier (e.g. "A33", "Redmi Note 12"), else an empty string
- storage_gb: storage in GB if mentioned (128, 256 ...), as integer, else 0
- ram_gb: RAM in GB if mentioned, as integer, else 0
- color: color if mentioned, else an empty string

Return ONLY the JSON object.`

// alignSystem instructs the model to classify one listing against the
// buyer's intent, reasoning step by step before committing to a verdict.
const alignSystem = `You are an entity-resolution expert for e-commerce products.
You must classify whether a scraped product listing matches a buyer's intent.

Reason step by step: does the brand match, does the model match, do the key
specs (storage, RAM, color) match, and does the title contain accessory
keywords (case, cover, cable, charger, screen protector and their Uzbek or
Russian equivalents)?

Classification rules:
- "exact": the listing IS the queried product (brand, model, and key specs match)
- "close": same product line but different configuration (e.g., 64GB vs 128GB)
- "accessory": a case, screen protector, charger, cable, or earphone for the product
- "unrelated": a completely different product

Return ONLY the JSON object. No markdown, no explanation outside JSON.`

const alignUserTemplate = `USER QUERY (what the buyer wants):
  Product: %s
  Brand: %s
  Model: %s
  Storage: %s GB
  RAM: %s GB
  Color: %s

LISTING FOUND ON %s:
  Title: %q
  Price: %s`
