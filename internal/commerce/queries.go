package commerce

// Shop API GraphQL operations. Field sets mirror what the pages render; keep
// them lean so the API can cache aggressively.

const collectionsQuery = `
query collections {
  collections(options: { topLevelOnly: true }) {
    items {
      id
      name
      slug
      featuredAsset {
        id
        preview
      }
    }
  }
}`

const collectionQuery = `
query collection($slug: String!) {
  collection(slug: $slug) {
    id
    name
    slug
    featuredAsset {
      id
      preview
    }
    breadcrumbs {
      id
      name
      slug
    }
  }
  search(input: { collectionSlug: $slug, groupByProduct: true }) {
    items {
      productId
      productName
      slug
      productAsset {
        id
        preview
      }
    }
  }
}`

const productBySlugQuery = `
query product($slug: String!) {
  product(slug: $slug) {
    id
    name
    slug
    description
    featuredAsset {
      id
      preview
    }
    assets {
      id
      preview
    }
    variants {
      id
      name
      sku
      priceWithTax
      currencyCode
      stockLevel
      assets {
        id
        preview
      }
    }
    collections {
      id
      name
      slug
      breadcrumbs {
        id
        name
        slug
      }
    }
    facetValues {
      name
      facet {
        code
      }
    }
  }
}`

const activeOrderFragment = `
fragment Cart on Order {
  id
  code
  totalQuantity
  totalWithTax
  currencyCode
  lines {
    id
    quantity
    linePriceWithTax
    featuredAsset {
      id
      preview
    }
    productVariant {
      id
      name
    }
  }
}`

const activeOrderQuery = `
query activeOrder {
  activeOrder {
    ...Cart
  }
}` + activeOrderFragment

const addItemToOrderMutation = `
mutation addItemToOrder($variantId: ID!, $quantity: Int!) {
  addItemToOrder(productVariantId: $variantId, quantity: $quantity) {
    __typename
    ...Cart
    ... on ErrorResult {
      errorCode
      message
    }
  }
}` + activeOrderFragment
